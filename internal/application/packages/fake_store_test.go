package packages

import (
	"context"
	"errors"

	"mortgage-dashboard/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// fakeStore records every call so tests can assert how many round-trips happened.
type fakeStore struct {
	rows    []domain.MortgagePackage
	err     error
	calls   map[string]int
	updated map[uuid.UUID]Payload
	tagged  map[uuid.UUID]datatypes.JSONSlice[string]
}

func newFakeStore(rows ...domain.MortgagePackage) *fakeStore {
	return &fakeStore{
		rows:    rows,
		calls:   map[string]int{},
		updated: map[uuid.UUID]Payload{},
		tagged:  map[uuid.UUID]datatypes.JSONSlice[string]{},
	}
}

func (f *fakeStore) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) List(ctx context.Context) ([]domain.MortgagePackage, error) {
	f.calls["list"]++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.MortgagePackage(nil), f.rows...), nil
}

func (f *fakeStore) Get(ctx context.Context, id uuid.UUID) (*domain.MortgagePackage, error) {
	f.calls["get"]++
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.ID == id {
			row := r
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) Insert(ctx context.Context, p Payload) (*domain.MortgagePackage, error) {
	f.calls["insert"]++
	if f.err != nil {
		return nil, f.err
	}
	row := p.model()
	row.ID = uuid.New()
	f.rows = append(f.rows, *row)
	return row, nil
}

func (f *fakeStore) Update(ctx context.Context, id uuid.UUID, p Payload) error {
	f.calls["update"]++
	if f.err != nil {
		return f.err
	}
	for _, r := range f.rows {
		if r.ID == id {
			f.updated[id] = p
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.calls["delete"]++
	if f.err != nil {
		return f.err
	}
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) SetTags(ctx context.Context, id uuid.UUID, tags datatypes.JSONSlice[string]) error {
	f.calls["set_tags"]++
	if f.err != nil {
		return f.err
	}
	f.tagged[id] = tags
	return nil
}

var errBackend = errors.New("connection reset by peer")

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func pkg(bank, name string, minLoan float64, updated string) domain.MortgagePackage {
	return domain.MortgagePackage{
		ID:           uuid.New(),
		Bank:         bank,
		PropertyType: "HDB",
		Category:     domain.CategoryFixed,
		MinLoanSize:  minLoan,
		PackageName:  name,
		LockinPeriod: "2 Years",
		Rates:        "Year 1: 2.0% Fixed <br> Thereafter: 3M SORA + 0.55%",
		LastUpdated:  mustDate(updated),
		Tags:         datatypes.JSONSlice[string]{},
	}
}
