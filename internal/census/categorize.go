package census

import (
	"strings"

	"enrollapi/internal/standardize"
	"enrollapi/pkg/contracts/domain"
)

// cohortNotReported marks a corporate-cohort cell that carries no real
// value; such rows are not treated as corporate even when the flag is set.
const cohortNotReported = "not reported"

// CategoryRule is one step of the census categorization cascade.
type CategoryRule struct {
	Name     string
	Category domain.Category
	Matches  func(domain.CensusStudentRecord) bool
}

// CategoryRules is the ordered census cascade. Like the application
// cascade the order is a contract, but the evidence is different: census
// rows have location, flags and degree type instead of channel tags.
var CategoryRules = []CategoryRule{
	{
		Name:     "continuing-ed program or school",
		Category: domain.CategoryContinuingEd,
		Matches: func(r domain.CensusStudentRecord) bool {
			return standardize.IsContinuingEdProgram(r.Program) ||
				standardize.IsContinuingEdSchool(r.School)
		},
	},
	{
		Name:     "non-degree",
		Category: domain.CategoryASAP,
		Matches: func(r domain.CensusStudentRecord) bool {
			return r.DegreeType == standardize.DegreeNonDegree
		},
	},
	{
		Name:     "partner online location",
		Category: domain.CategoryPartnerOnline,
		Matches: func(r domain.CensusStudentRecord) bool {
			return r.LocationDetailed == "Online Noodle"
		},
	},
	{
		Name:     "beacon flag",
		Category: domain.CategoryBeacon,
		Matches: func(r domain.CensusStudentRecord) bool {
			return r.BeaconFlag == 1
		},
	},
	{
		Name:     "online corporate",
		Category: domain.CategoryCorporate,
		Matches: func(r domain.CensusStudentRecord) bool {
			return r.LocationDetailed == "Online" &&
				r.CorporateFlag == "Corporate" &&
				hasRealCohort(r.CorporateCohort)
		},
	},
	{
		Name:     "online retail",
		Category: domain.CategoryRetail,
		Matches: func(r domain.CensusStudentRecord) bool {
			return r.LocationDetailed == "Online"
		},
	},
}

// Categorize assigns the census category, falling through to the
// Uncategorized sentinel. The sentinel stays visible: NTR callers filter
// it explicitly, and anything landing there shows up in data-quality
// review instead of being silently priced as Retail.
func Categorize(r domain.CensusStudentRecord) domain.Category {
	for _, rule := range CategoryRules {
		if rule.Matches(r) {
			return rule.Category
		}
	}
	return domain.CategoryUncategorized
}

// DeriveStudentType maps raw status to the billing classification.
// New-status students already enrolled in the prior summer term as new are
// Current: they were counted (and priced) as new once and must not be
// again.
func DeriveStudentType(r domain.CensusStudentRecord) domain.StudentType {
	if r.Status == domain.StatusNew && !r.PriorSummerAsNew {
		return domain.TypeNew
	}
	return domain.TypeCurrent
}

func hasRealCohort(cohort string) bool {
	c := strings.ToLower(strings.TrimSpace(cohort))
	return c != "" && c != cohortNotReported
}
