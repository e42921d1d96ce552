package packages

import (
	"regexp"

	"gorm.io/datatypes"
)

const (
	TagBestRate  = "best_rate"
	TagExclusive = "exclusive"
)

type tagRule struct {
	tag string
	re  *regexp.Regexp
}

// tagRules are checked in priority order; the first tag of a package is its primary badge.
var tagRules = []tagRule{
	{TagBestRate, regexp.MustCompile(`(?i)best rate|lowest rate`)},
	{TagExclusive, regexp.MustCompile(`(?i)exclusive|high net worth|premium`)},
}

// Classify derives the badge tags of a package from its features text.
func Classify(features *string) datatypes.JSONSlice[string] {
	tags := datatypes.JSONSlice[string]{}
	if features == nil || *features == "" {
		return tags
	}
	for _, r := range tagRules {
		if r.re.MatchString(*features) {
			tags = append(tags, r.tag)
		}
	}
	return tags
}

// BadgeLabel is the display text of a tag.
func BadgeLabel(tag string) string {
	switch tag {
	case TagBestRate:
		return "Best Rate"
	case TagExclusive:
		return "Exclusive"
	}
	return ""
}
