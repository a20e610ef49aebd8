// Package census classifies the point-in-time census snapshot into the
// shared category space and prices it with the cost-per-credit rate table
// to produce net tuition revenue. Census rows lack application-funnel
// fields, so the categorizer here is an independent cascade over location,
// corporate flags and degree type; it is deliberately not shared with the
// application classifier.
package census

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"enrollapi/internal/feed"
	"enrollapi/internal/standardize"
	"enrollapi/pkg/contracts/domain"
)

// Census feed column names. The credits column has two known aliases
// between export versions; both are tried in order.
const (
	colStudentID      = "Census_1_STUDENT_ID"
	colSemester       = "Census_1_SEMESTER"
	colLocation       = "Census_1_STUDENT_LOCATION_DETAILED"
	colDegreeType     = "Census_1_DEGREE_TYPE"
	colCorporateFlag  = "Census_1_CORPORATE_STUDENT"
	colCorporateCohort = "Census_1_CORPORATE_COHORT"
	colBeaconFlag     = "Census_1_BEACON_FLAG"
	colStatus         = "Census_1_STUDENT_STATUS"
	colPriorSummer    = "Census_1_ENROLLED_IN_PREVIOUS_SUMMER_SEMESTER_AS_NEW"
	colCreditsPrimary = "Census_1_CENSUS3_TOTAL_NUMBER_OF_CREDIT_HOURS"
	colCreditsAlias   = "Census_1_NUMBER_OF_CREDITS"
	colProgram        = "Census_1_PRIMARY_PROGRAM_OF_STUDY"
	colSchool         = "Census_1_SCHOOL"
)

// Locations and degree types in scope for enrollment and NTR reporting.
// Census rows outside these sets are invisible to the engine by design.
var (
	inScopeLocations = map[string]bool{
		"Online":        true,
		"Online Noodle": true,
	}
	inScopeDegrees = map[string]bool{
		standardize.DegreeMasters:   true,
		standardize.DegreeGradCert:  true,
		standardize.DegreeNonDegree: true,
	}
)

// Load filters the raw census table to the reporting semester and the
// in-scope population, then builds categorized student records. Malformed
// numeric cells degrade to zero for that cell; no row is rejected for bad
// data once it is in scope.
func Load(ctx context.Context, logger *slog.Logger, table *feed.Table, semester string) []domain.CensusStudentRecord {
	if logger == nil {
		logger = slog.Default()
	}
	if table.Len() == 0 {
		return nil
	}

	creditsCol := table.Resolve(colCreditsPrimary, colCreditsAlias)

	var records []domain.CensusStudentRecord
	for i := 0; i < table.Len(); i++ {
		if table.Field(i, colSemester) != semester {
			continue
		}
		location := table.Field(i, colLocation)
		degree := table.Field(i, colDegreeType)
		if !inScopeLocations[location] || !inScopeDegrees[degree] {
			continue
		}

		rec := domain.CensusStudentRecord{
			StudentID:        table.Field(i, colStudentID),
			Semester:         semester,
			LocationDetailed: location,
			DegreeType:       degree,
			CorporateFlag:    table.Field(i, colCorporateFlag),
			CorporateCohort:  table.Field(i, colCorporateCohort),
			BeaconFlag:       parseFlag(table.Cell(i, table.Resolve(colBeaconFlag))),
			Status:           domain.StudentStatus(table.Field(i, colStatus)),
			PriorSummerAsNew: parseFlag(table.Field(i, colPriorSummer)) == 1,
			Credits:          parseCredits(table.Cell(i, creditsCol)),
			Program:          table.Field(i, colProgram),
			School:           table.Field(i, colSchool),
		}
		rec.Category = Categorize(rec)
		rec.Type = DeriveStudentType(rec)
		records = append(records, rec)
	}

	logger.InfoContext(ctx, "loaded census population",
		slog.String("semester", semester),
		slog.Int("raw_rows", table.Len()),
		slog.Int("in_scope", len(records)),
		slog.Int("unique_students", UniqueStudents(records)))

	return records
}

// UniqueStudents counts distinct student IDs. The census repeats students
// across rows, so this — never len(records) — is the headcount unit. Rows
// with a blank ID each count as one, there is nothing to merge them on.
func UniqueStudents(records []domain.CensusStudentRecord) int {
	seen := make(map[string]bool, len(records))
	blanks := 0
	for _, r := range records {
		if r.StudentID == "" {
			blanks++
			continue
		}
		seen[r.StudentID] = true
	}
	return len(seen) + blanks
}

// StatusCounts produces the unique-student counts per raw status that the
// reconciliation layer consumes.
func StatusCounts(records []domain.CensusStudentRecord) domain.CensusStatusCounts {
	counts := domain.CensusStatusCounts{Total: UniqueStudents(records)}
	counts.New = uniqueWithStatus(records, domain.StatusNew)
	counts.Continuing = uniqueWithStatus(records, domain.StatusContinuing)
	counts.Returning = uniqueWithStatus(records, domain.StatusReturning)
	return counts
}

func uniqueWithStatus(records []domain.CensusStudentRecord, status domain.StudentStatus) int {
	var matched []domain.CensusStudentRecord
	for _, r := range records {
		if r.Status == status {
			matched = append(matched, r)
		}
	}
	return UniqueStudents(matched)
}

// parseFlag reads 0/1-ish cells ("1", "1.0", "true"). Anything else is 0.
func parseFlag(value string) int {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "true" {
		return 1
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != 1 {
		return 0
	}
	return 1
}

// parseCredits reads the credits cell; unparseable values contribute 0
// credits rather than failing the row.
func parseCredits(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
