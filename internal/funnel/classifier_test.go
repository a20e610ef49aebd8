package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"enrollapi/pkg/contracts/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		fields   AppFields
		expected domain.Category
	}{
		{
			name: "secondary channel beats everything",
			fields: AppFields{
				Source:        domain.PopulationSecondary,
				SchoolApplied: "Professional Ed",
				AppTags:       "Noodle",
			},
			expected: domain.CategoryASAP,
		},
		{
			name: "continuing ed school marker",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "Office of Professional Ed",
				AppTags:       "Noodle",
			},
			expected: domain.CategoryContinuingEd,
		},
		{
			name: "continuing ed program",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "SSE",
				ProgramRaw:    "Applied Data Science",
				AppTags:       "Noodle",
			},
			expected: domain.CategoryContinuingEd,
		},
		{
			name: "blank school on non dual degree",
			fields: AppFields{
				Source:         domain.PopulationPrimary,
				SchoolApplied:  "",
				DegreeInterest: "Master of Science",
				AppTags:        "Noodle",
			},
			expected: domain.CategoryContinuingEd,
		},
		{
			name: "blank school dual degree escapes the default",
			fields: AppFields{
				Source:         domain.PopulationPrimary,
				SchoolApplied:  "",
				DegreeInterest: "Dual Degree",
				AppTags:        "Noodle",
			},
			expected: domain.CategoryPartnerOnline,
		},
		{
			name: "blank tags is retail even with sponsor",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "SSE",
				AppTags:       "",
				Employer:      "Boeing",
			},
			expected: domain.CategoryRetail,
		},
		{
			name: "edd tag forces retail",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "SSE",
				AppTags:       "EDD, Noodle",
			},
			expected: domain.CategoryRetail,
		},
		{
			name: "special program",
			fields: AppFields{
				Source:         domain.PopulationPrimary,
				SchoolApplied:  "SSE",
				AppTags:        "Noodle",
				SpecialProgram: "Veterans Pathway",
			},
			expected: domain.CategorySpecial,
		},
		{
			name: "noodle tag",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "SSE",
				AppTags:       "Noodle",
			},
			expected: domain.CategoryPartnerOnline,
		},
		{
			name: "noodle tag with exclusion falls through to beacon",
			fields: AppFields{
				Source:           domain.PopulationPrimary,
				SchoolApplied:    "SSE",
				AppTags:          "Noodle, Beacon",
				PartnerException: "Exclude from Noodle",
			},
			expected: domain.CategoryBeacon,
		},
		{
			name: "beacon tag",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "SSE",
				AppTags:       "Beacon",
			},
			expected: domain.CategoryBeacon,
		},
		{
			name: "corporate tag",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "SSE",
				AppTags:       "Corporate",
			},
			expected: domain.CategoryCorporate,
		},
		{
			name: "employer implies corporate",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "SSE",
				AppTags:       "SomeTag",
				Employer:      "Raytheon",
			},
			expected: domain.CategoryCorporate,
		},
		{
			name: "nothing matches defaults to retail",
			fields: AppFields{
				Source:        domain.PopulationPrimary,
				SchoolApplied: "SSE",
				AppTags:       "SomeTag",
			},
			expected: domain.CategoryRetail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.fields))
		})
	}
}

// A row matching several rules must take the earliest one; this pins the
// cascade order itself rather than individual outcomes.
func TestClassifyFirstMatchWins(t *testing.T) {
	fields := AppFields{
		Source:           domain.PopulationPrimary,
		SchoolApplied:    "Office of Professional Ed",
		ProgramRaw:       "Applied Data Science",
		AppTags:          "Noodle, Beacon, Corporate",
		Employer:         "Boeing",
		SpecialProgram:   "Pathway",
		CorporateSponsor: "Yes",
	}

	var matched []string
	for _, rule := range ClassificationRules {
		if rule.Matches(fields) {
			matched = append(matched, rule.Name)
		}
	}
	assert.Greater(t, len(matched), 1, "fixture must match multiple rules")
	assert.Equal(t, domain.CategoryContinuingEd, Classify(fields))
}

func TestClassifyIsTotal(t *testing.T) {
	// The zero-value row matches the blank-school rule; a fully populated
	// unmatched row falls to the retail default. Either way there is
	// always exactly one category.
	assert.Equal(t, domain.CategoryContinuingEd, Classify(AppFields{Source: domain.PopulationPrimary}))
	assert.NotEmpty(t, Classify(AppFields{
		Source:        domain.PopulationPrimary,
		SchoolApplied: "SSE",
		AppTags:       "Unrecognized",
	}))
}
