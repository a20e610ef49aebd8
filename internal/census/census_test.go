package census

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollapi/internal/feed"
	"enrollapi/internal/standardize"
	"enrollapi/pkg/contracts/domain"
)

func censusRow(id, location, degree, status string, mutate func([]string) []string) []string {
	row := []string{
		id,         // STUDENT_ID
		"2026S",    // SEMESTER
		location,   // STUDENT_LOCATION_DETAILED
		degree,     // DEGREE_TYPE
		"",         // CORPORATE_STUDENT
		"",         // CORPORATE_COHORT
		"0",        // BEACON_FLAG
		status,     // STUDENT_STATUS
		"0",        // PRIOR_SUMMER_AS_NEW
		"3",        // CREDITS
		"Computer Science", // PROGRAM
		"SSE",      // SCHOOL
	}
	if mutate != nil {
		row = mutate(row)
	}
	return row
}

var censusHeaders = []string{
	"Census_1_STUDENT_ID",
	"Census_1_SEMESTER",
	"Census_1_STUDENT_LOCATION_DETAILED",
	"Census_1_DEGREE_TYPE",
	"Census_1_CORPORATE_STUDENT",
	"Census_1_CORPORATE_COHORT",
	"Census_1_BEACON_FLAG",
	"Census_1_STUDENT_STATUS",
	"Census_1_ENROLLED_IN_PREVIOUS_SUMMER_SEMESTER_AS_NEW",
	"Census_1_CENSUS3_TOTAL_NUMBER_OF_CREDIT_HOURS",
	"Census_1_PRIMARY_PROGRAM_OF_STUDY",
	"Census_1_SCHOOL",
}

func TestLoadFiltersScope(t *testing.T) {
	table := feed.NewTable(censusHeaders, [][]string{
		censusRow("S1", "Online", standardize.DegreeMasters, "New", nil),
		censusRow("S2", "On Campus", standardize.DegreeMasters, "New", nil),
		censusRow("S3", "Online", "Doctoral", "New", nil),
		censusRow("S4", "Online Noodle", standardize.DegreeGradCert, "Continuing", nil),
		censusRow("S5", "Online", standardize.DegreeMasters, "New", func(r []string) []string {
			r[1] = "2025F" // wrong semester
			return r
		}),
	})

	records := Load(context.Background(), nil, table, "2026S")
	require.Len(t, records, 2)
	assert.Equal(t, "S1", records[0].StudentID)
	assert.Equal(t, "S4", records[1].StudentID)
}

func TestLoadParsesCells(t *testing.T) {
	table := feed.NewTable(censusHeaders, [][]string{
		censusRow("S1", "Online", standardize.DegreeMasters, "New", func(r []string) []string {
			r[6] = "1.0"     // beacon flag as float
			r[8] = "true"    // prior summer as boolean text
			r[9] = "4.5"     // credits
			return r
		}),
		censusRow("S2", "Online", standardize.DegreeMasters, "New", func(r []string) []string {
			r[9] = "garbage" // unparseable credits
			return r
		}),
	})

	records := Load(context.Background(), nil, table, "2026S")
	require.Len(t, records, 2)

	assert.Equal(t, 1, records[0].BeaconFlag)
	assert.True(t, records[0].PriorSummerAsNew)
	assert.InDelta(t, 4.5, records[0].Credits, 0.001)

	assert.Zero(t, records[1].Credits, "bad cell degrades to zero, row survives")
}

func TestLoadCreditsColumnAlias(t *testing.T) {
	headers := append([]string(nil), censusHeaders...)
	headers[9] = "Census_1_NUMBER_OF_CREDITS"
	table := feed.NewTable(headers, [][]string{
		censusRow("S1", "Online", standardize.DegreeMasters, "New", nil),
	})

	records := Load(context.Background(), nil, table, "2026S")
	require.Len(t, records, 1)
	assert.InDelta(t, 3.0, records[0].Credits, 0.001)
}

func TestUniqueStudents(t *testing.T) {
	records := []domain.CensusStudentRecord{
		{StudentID: "A"},
		{StudentID: "A"},
		{StudentID: "B"},
		{StudentID: ""},
		{StudentID: ""},
	}
	// Duplicated IDs collapse; blank IDs each count on their own.
	assert.Equal(t, 4, UniqueStudents(records))

	doubled := append(append([]domain.CensusStudentRecord(nil), records...),
		domain.CensusStudentRecord{StudentID: "A"})
	assert.Equal(t, 4, UniqueStudents(doubled),
		"repeating an existing ID never changes the headcount")
}

func TestStatusCounts(t *testing.T) {
	records := []domain.CensusStudentRecord{
		{StudentID: "A", Status: domain.StatusNew},
		{StudentID: "A", Status: domain.StatusNew},
		{StudentID: "B", Status: domain.StatusContinuing},
		{StudentID: "C", Status: domain.StatusReturning},
	}

	counts := StatusCounts(records)
	assert.Equal(t, 1, counts.New)
	assert.Equal(t, 1, counts.Continuing)
	assert.Equal(t, 1, counts.Returning)
	assert.Equal(t, 3, counts.Total)
}

func TestCategorize(t *testing.T) {
	base := domain.CensusStudentRecord{
		LocationDetailed: "Online",
		DegreeType:       standardize.DegreeMasters,
		Program:          "Mechanical Engineering",
		School:           "SSE",
	}

	tests := []struct {
		name     string
		mutate   func(*domain.CensusStudentRecord)
		expected domain.Category
	}{
		{
			name: "continuing ed program wins first",
			mutate: func(r *domain.CensusStudentRecord) {
				r.Program = "Applied Data Science"
				r.BeaconFlag = 1
			},
			expected: domain.CategoryContinuingEd,
		},
		{
			name: "continuing ed school",
			mutate: func(r *domain.CensusStudentRecord) {
				r.School = "Professional Ed"
			},
			expected: domain.CategoryContinuingEd,
		},
		{
			name: "non degree",
			mutate: func(r *domain.CensusStudentRecord) {
				r.DegreeType = standardize.DegreeNonDegree
			},
			expected: domain.CategoryASAP,
		},
		{
			name: "partner location",
			mutate: func(r *domain.CensusStudentRecord) {
				r.LocationDetailed = "Online Noodle"
			},
			expected: domain.CategoryPartnerOnline,
		},
		{
			name: "beacon flag",
			mutate: func(r *domain.CensusStudentRecord) {
				r.BeaconFlag = 1
			},
			expected: domain.CategoryBeacon,
		},
		{
			name: "corporate needs a real cohort",
			mutate: func(r *domain.CensusStudentRecord) {
				r.CorporateFlag = "Corporate"
				r.CorporateCohort = "Boeing 2026"
			},
			expected: domain.CategoryCorporate,
		},
		{
			name: "corporate flag without cohort is retail",
			mutate: func(r *domain.CensusStudentRecord) {
				r.CorporateFlag = "Corporate"
				r.CorporateCohort = "Not Reported"
			},
			expected: domain.CategoryRetail,
		},
		{
			name:     "plain online is retail",
			mutate:   func(r *domain.CensusStudentRecord) {},
			expected: domain.CategoryRetail,
		},
		{
			name: "nothing matches is the sentinel",
			mutate: func(r *domain.CensusStudentRecord) {
				r.LocationDetailed = "Hybrid"
			},
			expected: domain.CategoryUncategorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			assert.Equal(t, tt.expected, Categorize(r))
		})
	}
}

func TestDeriveStudentType(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.StudentStatus
		prior    bool
		expected domain.StudentType
	}{
		{"new", domain.StatusNew, false, domain.TypeNew},
		{"new with prior summer is current", domain.StatusNew, true, domain.TypeCurrent},
		{"continuing", domain.StatusContinuing, false, domain.TypeCurrent},
		{"returning", domain.StatusReturning, false, domain.TypeCurrent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := domain.CensusStudentRecord{Status: tt.status, PriorSummerAsNew: tt.prior}
			assert.Equal(t, tt.expected, DeriveStudentType(r))
		})
	}
}
