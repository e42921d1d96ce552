package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Category is the loan category of a package.
type Category string

const (
	CategoryFixed             Category = "Fixed"
	CategoryFloatingCompleted Category = "Floating (Completed)"
	CategoryBUC               Category = "BUC"
)

// Categories lists every accepted category in form order.
var Categories = []Category{CategoryFixed, CategoryFloatingCompleted, CategoryBUC}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component. It stores as a SQL date through
// datatypes.Date and marshals to JSON as "YYYY-MM-DD".
type Date struct {
	datatypes.Date
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))}
}

// ParseDate parses "YYYY-MM-DD". A full RFC 3339 timestamp is accepted and truncated.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return time.Time(d.Date)
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// Before compares calendar days only.
func (d Date) Before(o Date) bool {
	return d.String() < o.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MortgagePackage is one row of the Supabase mortgage_packages table.
type MortgagePackage struct {
	ID           uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Bank         string                      `gorm:"column:bank;not null" json:"bank"`
	PropertyType string                      `gorm:"column:property_type;not null" json:"property_type"`
	Category     Category                    `gorm:"column:category" json:"category"`
	MinLoanSize  float64                     `gorm:"column:min_loan_size;not null" json:"min_loan_size"`
	PackageName  string                      `gorm:"column:package_name;not null" json:"package_name"`
	LockinPeriod string                      `gorm:"column:lockin_period;not null" json:"lockin_period"`
	Rates        string                      `gorm:"column:rates;type:text;not null" json:"rates"`
	Features     *string                     `gorm:"column:features;type:text" json:"features"`
	Subsidies    *string                     `gorm:"column:subsidies;type:text" json:"subsidies"`
	Remarks      *string                     `gorm:"column:remarks;type:text" json:"remarks"`
	LastUpdated  Date                        `gorm:"column:last_updated;not null" json:"last_updated"`
	Tags         datatypes.JSONSlice[string] `gorm:"column:tags;type:jsonb" json:"tags"`
	// Set by the database on insert. Nil on a package rebuilt from an update payload.
	CreatedAt *time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at,omitempty"`
}

func (MortgagePackage) TableName() string {
	return "mortgage_packages"
}

// BeforeCreate sets the id when the caller left it empty.
func (p *MortgagePackage) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// AfterFind applies the category default for rows created before the column existed.
func (p *MortgagePackage) AfterFind(tx *gorm.DB) error {
	if p.Category == "" {
		p.Category = CategoryFixed
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}
