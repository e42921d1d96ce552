package packages

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"mortgage-dashboard/internal/domain"
	"mortgage-dashboard/internal/pkg/validation"
)

// FilterAll is the categorical filter value that matches every package.
const FilterAll = "all"

// DefaultPageSize is the number of cards per page.
const DefaultPageSize = 10

type SortField string

const (
	SortPackageName SortField = "package_name"
	SortBank        SortField = "bank"
	SortMinLoanSize SortField = "min_loan_size"
	SortLastUpdated SortField = "last_updated"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query is the filter, sort and page state of the list view.
type Query struct {
	Search       string
	Bank         string
	PropertyType string
	LockinPeriod string
	Category     string
	ClientLoan   string
	SortBy       SortField
	SortOrder    SortOrder
	Page         int
	PageSize     int
}

// DefaultQuery is the state of a freshly opened list: newest first, page 1.
func DefaultQuery() Query {
	return Query{
		Bank:         FilterAll,
		PropertyType: FilterAll,
		LockinPeriod: FilterAll,
		Category:     FilterAll,
		SortBy:       SortLastUpdated,
		SortOrder:    SortDesc,
		Page:         1,
		PageSize:     DefaultPageSize,
	}
}

// ClientLoanAmount returns the parsed client loan amount when it is a valid number.
func (q Query) ClientLoanAmount() (float64, bool) {
	return validation.ParseNumber(q.ClientLoan)
}

// FilterKey fingerprints every input that changes the filtered or ordered set. A page
// number is only meaningful for the key it was issued with.
func (q Query) FilterKey() string {
	h := fnv.New64a()
	for _, part := range []string{
		q.Search, norm(q.Bank), norm(q.PropertyType), norm(q.LockinPeriod), norm(q.Category),
		strings.TrimSpace(q.ClientLoan), string(q.SortBy), string(q.SortOrder),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ResetPageIfChanged moves the query back to page 1 when prevKey belongs to other filters.
func (q Query) ResetPageIfChanged(prevKey string) Query {
	if prevKey != "" && prevKey != q.FilterKey() {
		q.Page = 1
	}
	return q
}

func norm(v string) string {
	if v == "" {
		return FilterAll
	}
	return v
}

func matchesCategorical(filter, value string) bool {
	return filter == "" || filter == FilterAll || filter == value
}

// Matches reports whether p passes every active predicate of q.
func (q Query) Matches(p domain.MortgagePackage) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.PackageName), term) && !strings.Contains(strings.ToLower(p.Bank), term) {
			return false
		}
	}
	if !matchesCategorical(q.Bank, p.Bank) ||
		!matchesCategorical(q.PropertyType, p.PropertyType) ||
		!matchesCategorical(q.LockinPeriod, p.LockinPeriod) ||
		!matchesCategorical(q.Category, string(p.Category)) {
		return false
	}
	if loan, ok := q.ClientLoanAmount(); ok && loan < p.MinLoanSize {
		return false
	}
	return true
}

// Filter keeps the packages matching q, in input order.
func Filter(all []domain.MortgagePackage, q Query) []domain.MortgagePackage {
	out := make([]domain.MortgagePackage, 0, len(all))
	for _, p := range all {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders pkgs in place. A valid client loan amount overrides the requested sort with
// min_loan_size descending. Equal keys fall back to the id so that flipping the order
// reverses the sequence exactly.
func Sort(pkgs []domain.MortgagePackage, q Query) {
	if _, ok := q.ClientLoanAmount(); ok {
		sort.SliceStable(pkgs, func(i, j int) bool {
			if pkgs[i].MinLoanSize != pkgs[j].MinLoanSize {
				return pkgs[i].MinLoanSize > pkgs[j].MinLoanSize
			}
			return pkgs[i].ID.String() < pkgs[j].ID.String()
		})
		return
	}
	desc := q.SortOrder != SortAsc
	sort.SliceStable(pkgs, func(i, j int) bool {
		c := compare(pkgs[i], pkgs[j], q.SortBy)
		if c == 0 {
			c = strings.Compare(pkgs[i].ID.String(), pkgs[j].ID.String())
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b domain.MortgagePackage, field SortField) int {
	switch field {
	case SortMinLoanSize:
		switch {
		case a.MinLoanSize < b.MinLoanSize:
			return -1
		case a.MinLoanSize > b.MinLoanSize:
			return 1
		}
		return 0
	case SortBank:
		return strings.Compare(a.Bank, b.Bank)
	case SortLastUpdated:
		return strings.Compare(a.LastUpdated.String(), b.LastUpdated.String())
	default:
		return strings.Compare(a.PackageName, b.PackageName)
	}
}

// Page is one slice of an ordered result.
type Page struct {
	Items      []domain.MortgagePackage
	Page       int
	PageSize   int
	TotalPages int
}

// Paginate returns the 1-based page of items. Out-of-range pages clamp to the nearest page.
func Paginate(items []domain.MortgagePackage, page, size int) Page {
	if size < 1 {
		size = DefaultPageSize
	}
	totalPages := (len(items) + size - 1) / size
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return Page{
		Items:      items[start:end],
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}
}

// Result is the display subset of the list view.
type Result struct {
	Items      []domain.MortgagePackage
	Total      int
	TotalAll   int
	Page       int
	PageSize   int
	TotalPages int
	ClientLoan *float64
	FilterKey  string
}

// Apply filters, orders and paginates all. It does not modify all.
func Apply(all []domain.MortgagePackage, q Query) Result {
	filtered := Filter(all, q)
	Sort(filtered, q)
	pg := Paginate(filtered, q.Page, q.PageSize)

	res := Result{
		Items:      pg.Items,
		Total:      len(filtered),
		TotalAll:   len(all),
		Page:       pg.Page,
		PageSize:   pg.PageSize,
		TotalPages: pg.TotalPages,
		FilterKey:  q.FilterKey(),
	}
	if loan, ok := q.ClientLoanAmount(); ok {
		res.ClientLoan = &loan
	}
	return res
}

// Facets are the distinct values offered by the filter dropdowns, in first-seen order.
type Facets struct {
	Banks         []string `json:"banks"`
	PropertyTypes []string `json:"property_types"`
	LockinPeriods []string `json:"lockin_periods"`
	Categories    []string `json:"categories"`
}

func FacetsOf(all []domain.MortgagePackage) Facets {
	f := Facets{
		Banks:         []string{},
		PropertyTypes: []string{},
		LockinPeriods: []string{},
		Categories:    []string{},
	}
	seen := map[string]map[string]bool{"b": {}, "p": {}, "l": {}, "c": {}}
	add := func(kind, v string, dst *[]string) {
		if !seen[kind][v] {
			seen[kind][v] = true
			*dst = append(*dst, v)
		}
	}
	for _, p := range all {
		add("b", p.Bank, &f.Banks)
		add("p", p.PropertyType, &f.PropertyTypes)
		add("l", p.LockinPeriod, &f.LockinPeriods)
		add("c", string(p.Category), &f.Categories)
	}
	return f
}
