package packages

import (
	"testing"

	"mortgage-dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestFormatSGD(t *testing.T) {
	assert.Equal(t, "S$500,000", FormatSGD(500000))
	assert.Equal(t, "S$1,234.5", FormatSGD(1234.5))
	assert.Equal(t, "S$999", FormatSGD(999))
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"Year 1: 2.0%", "Year 2: 2.1%"}, SplitLines("Year 1: 2.0% <br>Year 2: 2.1%"))
	assert.Equal(t, []string{"single"}, SplitLines("single"))
	assert.Empty(t, SplitLines(""))
}

func TestCardFor(t *testing.T) {
	p := pkg("DBS", "DBS", 500000, "2025-01-01")
	p.Features = strPtr("Exclusive for premium clients <br> Best rate guaranteed")
	p.Tags = datatypes.JSONSlice[string]{TagBestRate, TagExclusive}

	c := CardFor(p, true)
	assert.Equal(t, "S$500,000", c.MinLoanDisplay)
	assert.Equal(t, []string{"Year 1: 2.0% Fixed", "Thereafter: 3M SORA + 0.55%"}, c.RateLines)
	assert.Len(t, c.FeatureLines, 2)
	assert.Equal(t, "Best Rate", c.PrimaryBadge)
	assert.True(t, c.MostRelevant)

	plain := CardFor(pkg("UOB", "UOB", 1, "2025-01-01"), false)
	assert.Empty(t, plain.PrimaryBadge)
	assert.NotNil(t, plain.FeatureLines)
}

func TestCards_MostRelevantOnlyWithClientLoanOnFirstPage(t *testing.T) {
	loan := 400000.0
	items := []domain.MortgagePackage{pkg("A", "a", 1, "2025-01-01"), pkg("B", "b", 1, "2025-01-01")}

	cards := Cards(Result{Items: items, Page: 1, ClientLoan: &loan})
	assert.True(t, cards[0].MostRelevant)
	assert.False(t, cards[1].MostRelevant)

	cards = Cards(Result{Items: items, Page: 2, ClientLoan: &loan})
	assert.False(t, cards[0].MostRelevant)

	cards = Cards(Result{Items: items, Page: 1})
	assert.False(t, cards[0].MostRelevant)
}
