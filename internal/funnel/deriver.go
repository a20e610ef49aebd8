// Package funnel turns raw application tables into uniform applicant
// records and reduces them to funnel metrics. It owns the enrollment
// deriver, the category cascade, the population transformer, the
// aggregators and the reconciliation of pipeline data with census counts.
package funnel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"enrollapi/internal/feed"
)

// Column name variants for the enrollment-status source. The two feeds
// report enrollment through different fields; the deriver tries the date
// column first, then the term label, so callers never branch per feed.
var (
	enrollmentDateColumns = []string{"Date of Enrollment", "Enrollment Date"}
	enrollmentTermColumns = []string{"Term of Enrollment", "Enrollment Term"}
)

// dateLayouts are the formats seen in real feed exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	time.RFC3339,
}

// EnrollmentDerivation is the per-table result of deriving enrollment
// status. MissingSource marks the pipeline-configuration failure where no
// usable column exists at all; that case zeroes a whole year's enrollment
// count, so it is surfaced here and logged loudly instead of being folded
// into ordinary row-level defaults.
type EnrollmentDerivation struct {
	Enrolled      []bool
	Method        string // "date", "term" or "none"
	Column        string
	EnrolledCount int
	MissingSource bool
}

// DeriveEnrollment decides, per row, whether the applicant counted as
// enrolled in one of the valid reporting years.
//
// Rows with an unparseable or blank date are simply not enrolled; they are
// never dropped and never produce an error.
func DeriveEnrollment(ctx context.Context, logger *slog.Logger, table *feed.Table, validYears []int) EnrollmentDerivation {
	if logger == nil {
		logger = slog.Default()
	}
	result := EnrollmentDerivation{Enrolled: make([]bool, table.Len())}

	if col := table.Resolve(enrollmentDateColumns...); col != feed.ColumnAbsent {
		result.Method = "date"
		result.Column = table.Headers()[col]
		for i := range result.Enrolled {
			if enrolledFromDate(table.Cell(i, col), validYears) {
				result.Enrolled[i] = true
				result.EnrolledCount++
			}
		}
		logger.InfoContext(ctx, "derived enrollment from date column",
			slog.String("column", result.Column),
			slog.Int("non_null", table.NonEmptyCount(col)),
			slog.Int("enrolled", result.EnrolledCount))
		return result
	}

	if col := table.Resolve(enrollmentTermColumns...); col != feed.ColumnAbsent {
		result.Method = "term"
		result.Column = table.Headers()[col]
		for i := range result.Enrolled {
			if enrolledFromTerm(table.Cell(i, col), validYears) {
				result.Enrolled[i] = true
				result.EnrolledCount++
			}
		}
		logger.InfoContext(ctx, "derived enrollment from term column",
			slog.String("column", result.Column),
			slog.Int("enrolled", result.EnrolledCount))
		return result
	}

	// No enrollment source at all. This is a feed-shape failure, not a row
	// data issue: every enrollment in the table silently reads as zero, so
	// it must be visible in logs and on the result.
	result.Method = "none"
	result.MissingSource = true
	if table.Len() > 0 {
		logger.WarnContext(ctx, "no enrollment column found; all rows treated as not enrolled",
			slog.Int("rows", table.Len()),
			slog.String("available_columns", strings.Join(table.Headers(), ", ")))
	}
	return result
}

// enrolledFromDate parses the cell as a date and checks its year against
// the valid reporting window.
func enrolledFromDate(value string, validYears []int) bool {
	if value == "" {
		return false
	}
	parsed, ok := parseDate(value)
	if !ok {
		return false
	}
	return containsYear(validYears, parsed.Year())
}

// enrolledFromTerm checks whether the term label mentions any valid year.
func enrolledFromTerm(value string, validYears []int) bool {
	if value == "" {
		return false
	}
	for _, year := range validYears {
		if strings.Contains(value, fmt.Sprintf("%d", year)) {
			return true
		}
	}
	return false
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func containsYear(years []int, year int) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}
