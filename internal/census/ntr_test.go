package census

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollapi/internal/standardize"
	"enrollapi/pkg/contracts/domain"
)

func student(id string, category domain.Category, degree string, studentType domain.StudentType, credits float64) domain.CensusStudentRecord {
	return domain.CensusStudentRecord{
		StudentID:  id,
		Category:   category,
		DegreeType: degree,
		Type:       studentType,
		Credits:    credits,
		Program:    "Computer Science",
	}
}

func TestRateTableLookup(t *testing.T) {
	table := DefaultRateTable()

	rate, ok := table.Lookup(domain.CategoryRetail, standardize.DegreeMasters, domain.TypeCurrent)
	require.True(t, ok)
	assert.InDelta(t, 1723, rate, 0.001)

	rate, ok = table.Lookup(domain.CategoryBeacon, standardize.DegreeGradCert, domain.TypeNew)
	assert.False(t, ok)
	assert.Zero(t, rate)
}

func TestCalculate(t *testing.T) {
	engine := NewEngine(nil, nil, 100_000)
	records := []domain.CensusStudentRecord{
		student("A", domain.CategoryRetail, standardize.DegreeMasters, domain.TypeNew, 6),      // 6 * 1395
		student("A", domain.CategoryRetail, standardize.DegreeMasters, domain.TypeNew, 3),      // same student, 3 * 1395
		student("B", domain.CategoryRetail, standardize.DegreeMasters, domain.TypeCurrent, 9),  // 9 * 1723
		student("C", domain.CategoryASAP, standardize.DegreeNonDegree, domain.TypeNew, 4),      // 4 * 875
		student("D", domain.CategoryUncategorized, standardize.DegreeMasters, domain.TypeNew, 12),
	}

	summary, breakdown := engine.Calculate(context.Background(), records)

	require.Len(t, breakdown, 2)

	// Sorted by category name: ASAP before Retail.
	asap := breakdown[0]
	assert.Equal(t, domain.CategoryASAP, asap.Category)
	assert.Equal(t, 1, asap.NewStudents)
	assert.InDelta(t, 4*875, asap.TotalNTR, 0.001)

	retail := breakdown[1]
	assert.Equal(t, domain.CategoryRetail, retail.Category)
	assert.Equal(t, 1, retail.NewStudents, "duplicate rows of one student count once")
	assert.Equal(t, 1, retail.CurrentStudents)
	assert.InDelta(t, 9, retail.NewCredits, 0.001, "credits still sum across rows")
	assert.InDelta(t, 9*1395+9*1723, retail.TotalNTR, 0.001)

	expectedTotal := 9*1395.0 + 9*1723.0 + 4*875.0
	assert.InDelta(t, expectedTotal, summary.TotalNTR, 0.001)
	assert.Equal(t, 3, summary.TotalStudents, "uncategorized rows are excluded entirely")
	assert.InDelta(t, expectedTotal/100_000*100, summary.PercentOfGoal, 0.001)
	assert.InDelta(t, 100_000-expectedTotal, summary.GapToGoal, 0.001)
	assert.Empty(t, summary.RateGaps)
}

func TestCalculateRateGap(t *testing.T) {
	engine := NewEngine(nil, nil, 0)
	records := []domain.CensusStudentRecord{
		// Beacon has no graduate-certificate rate in the default table.
		student("A", domain.CategoryBeacon, standardize.DegreeGradCert, domain.TypeNew, 6),
	}

	summary, breakdown := engine.Calculate(context.Background(), records)

	require.Len(t, breakdown, 1)
	assert.Zero(t, breakdown[0].RateNew, "missing rate prices at zero")
	assert.Zero(t, breakdown[0].TotalNTR)

	require.Len(t, summary.RateGaps, 1)
	gap := summary.RateGaps[0]
	assert.Equal(t, domain.CategoryBeacon, gap.Category)
	assert.Equal(t, standardize.DegreeGradCert, gap.DegreeType)
	assert.Equal(t, domain.TypeNew, gap.StudentType)
	assert.Equal(t, 1, gap.Students)
	assert.InDelta(t, 6, gap.Credits, 0.001)

	assert.Zero(t, summary.PercentOfGoal, "zero goal never divides")
}

func TestCalculateGapOnlyForObservedGroups(t *testing.T) {
	engine := NewEngine(nil, nil, 0)
	records := []domain.CensusStudentRecord{
		// Only current-type students exist; the missing new-side rate of
		// an all-current group must not produce a gap entry.
		student("A", domain.CategoryBeacon, standardize.DegreeGradCert, domain.TypeCurrent, 3),
	}

	summary, _ := engine.Calculate(context.Background(), records)
	require.Len(t, summary.RateGaps, 1)
	assert.Equal(t, domain.TypeCurrent, summary.RateGaps[0].StudentType)
}

func TestByProgram(t *testing.T) {
	engine := NewEngine(nil, nil, 0)
	records := []domain.CensusStudentRecord{
		student("A", domain.CategoryRetail, standardize.DegreeMasters, domain.TypeNew, 6),
		student("B", domain.CategoryRetail, standardize.DegreeMasters, domain.TypeCurrent, 3),
		func() domain.CensusStudentRecord {
			r := student("C", domain.CategoryASAP, standardize.DegreeNonDegree, domain.TypeNew, 4)
			r.Program = "Data Analytics"
			return r
		}(),
	}

	programs := engine.ByProgram(records)
	require.Len(t, programs, 2)

	// Sorted by NTR descending.
	cs := programs[0]
	assert.Equal(t, "Computer Science", cs.Program)
	assert.Equal(t, 2, cs.Students)
	assert.InDelta(t, 6*1395+3*1723, cs.NTR, 0.001)

	da := programs[1]
	assert.Equal(t, "Data Analytics", da.Program)
	assert.InDelta(t, 4*875, da.NTR, 0.001)
}

func TestByProgramContinuingEdDegreeOverride(t *testing.T) {
	engine := NewEngine(nil, nil, 0)
	r := student("A", domain.CategoryContinuingEd, standardize.DegreeMasters, domain.TypeNew, 3)
	r.Program = "Enterprise AI"

	programs := engine.ByProgram([]domain.CensusStudentRecord{r})
	require.Len(t, programs, 1)

	// The program catalog says certificate, so the certificate rate (583)
	// applies, not the continuing-ed masters rate (800).
	assert.InDelta(t, 3*583, programs[0].NTR, 0.001)
}

func TestContinuingEdDegree(t *testing.T) {
	tests := []struct {
		name     string
		program  string
		fallback string
		expected string
	}{
		{"masters program", "Applied Data Science", standardize.DegreeGradCert, standardize.DegreeMasters},
		{"certificate program", "Applied Data Science Foundations", standardize.DegreeMasters, standardize.DegreeProfessionalCert},
		{"unknown keeps fallback", "Leadership Essentials", standardize.DegreeGradCert, standardize.DegreeGradCert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, continuingEdDegree(tt.program, tt.fallback))
		})
	}
}

func TestLoadRateTableFile(t *testing.T) {
	path := t.TempDir() + "/rates.yaml"
	content := `rates:
  - category: Retail
    degree_type: Masters
    new: 1500
    current: 1800
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadRateTableFile(path)
	require.NoError(t, err)

	rate, ok := table.Lookup(domain.CategoryRetail, standardize.DegreeMasters, domain.TypeCurrent)
	require.True(t, ok)
	assert.InDelta(t, 1800, rate, 0.001)

	_, ok = table.Lookup(domain.CategoryBeacon, standardize.DegreeMasters, domain.TypeNew)
	assert.False(t, ok, "file tables replace the defaults, they do not merge")
}

func TestRateTableEntries(t *testing.T) {
	entries := DefaultRateTable().Entries()
	require.NotEmpty(t, entries)

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		ordered := prev.Category < cur.Category ||
			(prev.Category == cur.Category && prev.DegreeType <= cur.DegreeType)
		assert.True(t, ordered, "entries must be sorted for stable reference output")
	}
}
