package packages

import "mortgage-dashboard/internal/domain"

// FormOptions are the suggested values for the editor's select inputs.
type FormOptions struct {
	Banks         []string `json:"banks"`
	PropertyTypes []string `json:"property_types"`
	LockinPeriods []string `json:"lockin_periods"`
	Categories    []string `json:"categories"`
}

var (
	bankOptions = []string{
		"DBS", "OCBC", "UOB", "POSB", "Maybank", "Standard Chartered",
		"HSBC", "Citibank", "RHB", "Hong Leong Finance",
	}
	propertyTypeOptions = []string{"HDB", "Private", "HDB / Private", "Executive Condominium"}
	lockinPeriodOptions = []string{"1 Year", "2 Years", "3 Years", "4 Years", "5 Years", "No Lock-in"}
)

// Options returns fresh copies of the editor option lists.
func Options() FormOptions {
	cats := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		cats = append(cats, string(c))
	}
	return FormOptions{
		Banks:         append([]string(nil), bankOptions...),
		PropertyTypes: append([]string(nil), propertyTypeOptions...),
		LockinPeriods: append([]string(nil), lockinPeriodOptions...),
		Categories:    cats,
	}
}
