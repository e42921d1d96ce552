package packages

import (
	"context"
	"errors"

	"mortgage-dashboard/internal/domain"
	"mortgage-dashboard/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store is the hosted mortgage_packages table. Each method is one round-trip.
type Store interface {
	List(ctx context.Context) ([]domain.MortgagePackage, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.MortgagePackage, error)
	Insert(ctx context.Context, p Payload) (*domain.MortgagePackage, error)
	Update(ctx context.Context, id uuid.UUID, p Payload) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetTags(ctx context.Context, id uuid.UUID, tags datatypes.JSONSlice[string]) error
}

// Payload is the normalized write shape of a package. Optional texts are nil when blank.
type Payload struct {
	Bank         string
	PropertyType string
	Category     domain.Category
	MinLoanSize  float64
	PackageName  string
	LockinPeriod string
	Rates        string
	Features     *string
	Subsidies    *string
	Remarks      *string
	LastUpdated  domain.Date
	Tags         datatypes.JSONSlice[string]
}

// columns lists every writable column, nil optionals included, so an update clears them.
func (p Payload) columns() map[string]interface{} {
	return map[string]interface{}{
		"bank":          p.Bank,
		"property_type": p.PropertyType,
		"category":      p.Category,
		"min_loan_size": p.MinLoanSize,
		"package_name":  p.PackageName,
		"lockin_period": p.LockinPeriod,
		"rates":         p.Rates,
		"features":      p.Features,
		"subsidies":     p.Subsidies,
		"remarks":       p.Remarks,
		"last_updated":  p.LastUpdated,
		"tags":          p.Tags,
	}
}

func (p Payload) model() *domain.MortgagePackage {
	return &domain.MortgagePackage{
		Bank:         p.Bank,
		PropertyType: p.PropertyType,
		Category:     p.Category,
		MinLoanSize:  p.MinLoanSize,
		PackageName:  p.PackageName,
		LockinPeriod: p.LockinPeriod,
		Rates:        p.Rates,
		Features:     p.Features,
		Subsidies:    p.Subsidies,
		Remarks:      p.Remarks,
		LastUpdated:  p.LastUpdated,
		Tags:         p.Tags,
	}
}

// GormStore implements Store on the Supabase Postgres connection.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) List(ctx context.Context) (pkgs []domain.MortgagePackage, err error) {
	defer func() { metrics.ObserveStore("list", err) }()
	if err = s.DB.WithContext(ctx).Find(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (_ *domain.MortgagePackage, err error) {
	defer func() { metrics.ObserveStore("get", err) }()
	var p domain.MortgagePackage
	if err = s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) Insert(ctx context.Context, p Payload) (_ *domain.MortgagePackage, err error) {
	defer func() { metrics.ObserveStore("insert", err) }()
	row := p.model()
	if err = s.DB.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (s *GormStore) Update(ctx context.Context, id uuid.UUID, p Payload) (err error) {
	defer func() { metrics.ObserveStore("update", err) }()
	res := s.DB.WithContext(ctx).Model(&domain.MortgagePackage{}).Where("id = ?", id).Updates(p.columns())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { metrics.ObserveStore("delete", err) }()
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&domain.MortgagePackage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetTags(ctx context.Context, id uuid.UUID, tags datatypes.JSONSlice[string]) (err error) {
	defer func() { metrics.ObserveStore("set_tags", err) }()
	if tags == nil {
		tags = datatypes.JSONSlice[string]{}
	}
	return s.DB.WithContext(ctx).Model(&domain.MortgagePackage{}).Where("id = ?", id).Update("tags", tags).Error
}
