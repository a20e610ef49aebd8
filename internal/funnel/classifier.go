package funnel

import (
	"strings"

	"enrollapi/internal/standardize"
	"enrollapi/pkg/contracts/domain"
)

// AppFields are the raw per-row inputs the category cascade inspects.
// Values are pre-trimmed but otherwise raw; the cascade does its own
// case handling so the rules read like the business statements they encode.
type AppFields struct {
	Source           domain.SourcePopulation
	SchoolApplied    string
	DegreeInterest   string
	ProgramRaw       string
	AppTags          string
	Employer         string
	CorporateSponsor string
	PartnerException string
	SpecialProgram   string
}

// Rule is one step of the classification cascade.
type Rule struct {
	Name     string
	Category domain.Category
	Matches  func(AppFields) bool
}

// ClassificationRules is the ordered cascade that assigns every
// application exactly one category. The order is a contract: rules are
// sorted by specificity of evidence, first match wins, and reordering any
// two rules changes real classifications. Tests enumerate this slice to
// pin the precedence.
var ClassificationRules = []Rule{
	{
		Name:     "secondary channel",
		Category: domain.CategoryASAP,
		Matches: func(f AppFields) bool {
			return f.Source == domain.PopulationSecondary
		},
	},
	{
		Name:     "continuing-ed school marker",
		Category: domain.CategoryContinuingEd,
		Matches: func(f AppFields) bool {
			return strings.Contains(strings.ToUpper(f.SchoolApplied), "PROFESSIONAL ED")
		},
	},
	{
		Name:     "continuing-ed program",
		Category: domain.CategoryContinuingEd,
		Matches: func(f AppFields) bool {
			return standardize.IsContinuingEdProgram(f.ProgramRaw)
		},
	},
	{
		// A blank school on a non-dual-degree application is a
		// continuing-education intake form, not an unknown.
		Name:     "blank school default",
		Category: domain.CategoryContinuingEd,
		Matches: func(f AppFields) bool {
			return strings.TrimSpace(f.SchoolApplied) == "" &&
				strings.TrimSpace(f.DegreeInterest) != "Dual Degree"
		},
	},
	{
		Name:     "untagged or excluded program",
		Category: domain.CategoryRetail,
		Matches: func(f AppFields) bool {
			return strings.TrimSpace(f.AppTags) == "" || strings.Contains(f.AppTags, "EDD")
		},
	},
	{
		Name:     "special program",
		Category: domain.CategorySpecial,
		Matches: func(f AppFields) bool {
			return strings.TrimSpace(f.SpecialProgram) != ""
		},
	},
	{
		Name:     "partner channel",
		Category: domain.CategoryPartnerOnline,
		Matches: func(f AppFields) bool {
			return strings.Contains(f.AppTags, "Noodle") &&
				!strings.Contains(strings.ToLower(f.PartnerException), "exclude")
		},
	},
	{
		Name:     "beacon cohort",
		Category: domain.CategoryBeacon,
		Matches: func(f AppFields) bool {
			return strings.Contains(f.AppTags, "Beacon")
		},
	},
	{
		Name:     "corporate sponsored",
		Category: domain.CategoryCorporate,
		Matches: func(f AppFields) bool {
			return strings.Contains(f.AppTags, "Corporate") ||
				strings.TrimSpace(f.Employer) != "" ||
				strings.TrimSpace(f.CorporateSponsor) != ""
		},
	},
}

// Classify runs the cascade and returns the first matching rule's
// category. Rows matching nothing default to Retail, so the result is
// always exactly one category.
func Classify(f AppFields) domain.Category {
	for _, rule := range ClassificationRules {
		if rule.Matches(f) {
			return rule.Category
		}
	}
	return domain.CategoryRetail
}
