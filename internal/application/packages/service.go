package packages

import (
	"context"
	"errors"
	"fmt"

	"mortgage-dashboard/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service is the list view and record operations of the dashboard.
type Service struct {
	Store    Store
	Editor   *Editor
	PageSize int
}

// ListResult is one rendered page of the list view.
type ListResult struct {
	Result
	Cards  []Card
	Facets Facets
}

// List fetches every package once and derives the requested page from memory.
func (s *Service) List(ctx context.Context, q Query) (*ListResult, error) {
	all, err := s.Store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("packages: list failed")
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if q.PageSize < 1 {
		q.PageSize = s.pageSize()
	}
	res := Apply(all, q)
	return &ListResult{
		Result: res,
		Cards:  Cards(res),
		Facets: FacetsOf(all),
	}, nil
}

func (s *Service) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return DefaultPageSize
}

// Get returns one package for the edit form.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.MortgagePackage, error) {
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("package_id", id.String()).Msg("packages: get failed")
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.MortgagePackage, error) {
	return s.Editor.Save(ctx, nil, in)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*domain.MortgagePackage, error) {
	return s.Editor.Save(ctx, &id, in)
}

// Delete removes a package. Without confirmation it returns ErrNotConfirmed and issues no
// store call.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("package_id", id.String()).Msg("packages: delete failed")
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}
