package packages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mortgage-dashboard/internal/domain"
	"mortgage-dashboard/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Input is the create/edit form as submitted.
type Input struct {
	Bank         string   `json:"bank"`
	PropertyType string   `json:"property_type"`
	Category     string   `json:"category"`
	MinLoanSize  *float64 `json:"min_loan_size"`
	PackageName  string   `json:"package_name"`
	LockinPeriod string   `json:"lockin_period"`
	Rates        string   `json:"rates"`
	Features     string   `json:"features"`
	Subsidies    string   `json:"subsidies"`
	Remarks      string   `json:"remarks"`
	LastUpdated  string   `json:"last_updated"`
}

// InputFrom pre-fills the edit form from a stored package.
func InputFrom(p domain.MortgagePackage) Input {
	size := p.MinLoanSize
	in := Input{
		Bank:         p.Bank,
		PropertyType: p.PropertyType,
		Category:     string(p.Category),
		MinLoanSize:  &size,
		PackageName:  p.PackageName,
		LockinPeriod: p.LockinPeriod,
		Rates:        p.Rates,
		LastUpdated:  p.LastUpdated.String(),
	}
	if in.Category == "" {
		in.Category = string(domain.CategoryFixed)
	}
	in.Features = deref(p.Features)
	in.Subsidies = deref(p.Subsidies)
	in.Remarks = deref(p.Remarks)
	return in
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Editor validates form input and writes it with exactly one store call.
type Editor struct {
	Store Store
	Now   func() time.Time
}

func (e *Editor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Validate checks in against the form schema. A blank last_updated is allowed; it
// defaults to today when the payload is built.
func (e *Editor) Validate(in Input) validation.FieldErrors {
	errs := validation.FieldErrors{}
	errs.Required("bank", in.Bank, "Bank is required")
	errs.Required("property_type", in.PropertyType, "Property type is required")
	errs.Required("category", in.Category, "Category is required")
	if _, ok := errs["category"]; !ok && !domain.Category(strings.TrimSpace(in.Category)).Valid() {
		errs.Add("category", "Category must be one of Fixed, Floating (Completed), BUC")
	}
	if in.MinLoanSize == nil || *in.MinLoanSize < 1 {
		errs.Add("min_loan_size", "Minimum loan size must be greater than 0")
	}
	errs.Required("package_name", in.PackageName, "Package name is required")
	errs.Required("lockin_period", in.LockinPeriod, "Lock-in period is required")
	errs.Required("rates", in.Rates, "Rates are required")
	if strings.TrimSpace(in.LastUpdated) != "" {
		d, err := domain.ParseDate(in.LastUpdated)
		if err != nil {
			errs.Add("last_updated", "Last updated must be a valid date (YYYY-MM-DD)")
		} else if !validation.IsPickableDate(d.Time(), e.now()) {
			errs.Add("last_updated", "Last updated must be between 1900-01-01 and today")
		}
	}
	return errs
}

// Payload validates in and builds the normalized write payload with its tags.
func (e *Editor) Payload(in Input) (Payload, error) {
	if errs := e.Validate(in); !errs.Empty() {
		return Payload{}, &ValidationError{Fields: errs}
	}
	lastUpdated := domain.NewDate(e.now())
	if strings.TrimSpace(in.LastUpdated) != "" {
		lastUpdated, _ = domain.ParseDate(in.LastUpdated)
	}
	p := Payload{
		Bank:         strings.TrimSpace(in.Bank),
		PropertyType: strings.TrimSpace(in.PropertyType),
		Category:     domain.Category(strings.TrimSpace(in.Category)),
		MinLoanSize:  *in.MinLoanSize,
		PackageName:  strings.TrimSpace(in.PackageName),
		LockinPeriod: strings.TrimSpace(in.LockinPeriod),
		Rates:        in.Rates,
		Features:     optional(in.Features),
		Subsidies:    optional(in.Subsidies),
		Remarks:      optional(in.Remarks),
		LastUpdated:  lastUpdated,
	}
	p.Tags = Classify(p.Features)
	return p, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Save inserts when id is nil and updates otherwise. Validation failures return a
// *ValidationError before any store call. Store failures are logged and wrapped in
// ErrCreateFailed or ErrUpdateFailed; a missing row on update returns ErrNotFound.
func (e *Editor) Save(ctx context.Context, id *uuid.UUID, in Input) (*domain.MortgagePackage, error) {
	p, err := e.Payload(in)
	if err != nil {
		return nil, err
	}
	if id == nil {
		created, err := e.Store.Insert(ctx, p)
		if err != nil {
			log.Error().Err(err).Str("bank", p.Bank).Msg("packages: insert failed")
			return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
		}
		return created, nil
	}
	if err := e.Store.Update(ctx, *id, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("package_id", id.String()).Msg("packages: update failed")
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	updated := p.model()
	updated.ID = *id
	return updated, nil
}
