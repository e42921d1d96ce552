package packages

import (
	"strings"

	"mortgage-dashboard/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// LineBreak is the marker that separates lines inside rates and features.
const LineBreak = "<br>"

// Card is the render model of one package in the result grid.
type Card struct {
	domain.MortgagePackage
	RateLines      []string `json:"rate_lines"`
	FeatureLines   []string `json:"feature_lines"`
	MinLoanDisplay string   `json:"min_loan_display"`
	PrimaryBadge   string   `json:"primary_badge,omitempty"`
	MostRelevant   bool     `json:"most_relevant"`
}

var sgPrinter = message.NewPrinter(language.English)

// FormatSGD renders an amount as Singapore dollars with thousands separators and at most
// two decimals, e.g. S$500,000.
func FormatSGD(amount float64) string {
	return "S$" + sgPrinter.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}

// SplitLines splits text on the line marker and trims each line.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	parts := strings.Split(text, LineBreak)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// CardFor builds the card of p. mostRelevant marks the top match for a client loan amount.
func CardFor(p domain.MortgagePackage, mostRelevant bool) Card {
	c := Card{
		MortgagePackage: p,
		RateLines:       SplitLines(p.Rates),
		FeatureLines:    []string{},
		MinLoanDisplay:  FormatSGD(p.MinLoanSize),
		MostRelevant:    mostRelevant,
	}
	if p.Features != nil {
		c.FeatureLines = SplitLines(*p.Features)
	}
	if len(p.Tags) > 0 {
		c.PrimaryBadge = BadgeLabel(p.Tags[0])
	}
	return c
}

// Cards renders a result page. The first card of page 1 is most relevant when a client
// loan amount was supplied.
func Cards(res Result) []Card {
	out := make([]Card, 0, len(res.Items))
	for i, p := range res.Items {
		out = append(out, CardFor(p, i == 0 && res.Page == 1 && res.ClientLoan != nil))
	}
	return out
}
