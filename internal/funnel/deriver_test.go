package funnel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"enrollapi/internal/feed"
)

var testYears = []int{2024, 2025, 2026}

func TestDeriveEnrollmentFromDate(t *testing.T) {
	table := feed.NewTable(
		[]string{"Round", "Date of Enrollment"},
		[][]string{
			{"Fall 2026", "2026-08-15"},
			{"Fall 2026", "08/20/2026"},
			{"Fall 2026", "2019-08-15"},
			{"Fall 2026", "not a date"},
			{"Fall 2026", ""},
		},
	)

	result := DeriveEnrollment(context.Background(), nil, table, testYears)

	assert.Equal(t, "date", result.Method)
	assert.False(t, result.MissingSource)
	assert.Equal(t, []bool{true, true, false, false, false}, result.Enrolled)
	assert.Equal(t, 2, result.EnrolledCount)
}

func TestDeriveEnrollmentTermFallback(t *testing.T) {
	table := feed.NewTable(
		[]string{"Round", "Term of Enrollment"},
		[][]string{
			{"Fall 2026", "Fall 2026"},
			{"Fall 2026", "Spring 2020"},
			{"Fall 2026", ""},
		},
	)

	result := DeriveEnrollment(context.Background(), nil, table, testYears)

	assert.Equal(t, "term", result.Method)
	assert.False(t, result.MissingSource)
	assert.Equal(t, []bool{true, false, false}, result.Enrolled)
}

func TestDeriveEnrollmentDateWinsOverTerm(t *testing.T) {
	table := feed.NewTable(
		[]string{"Date of Enrollment", "Term of Enrollment"},
		[][]string{
			// Date says outside the window, term says inside; date wins.
			{"2019-01-01", "Fall 2026"},
		},
	)

	result := DeriveEnrollment(context.Background(), nil, table, testYears)

	assert.Equal(t, "date", result.Method)
	assert.Equal(t, []bool{false}, result.Enrolled)
}

func TestDeriveEnrollmentMissingSource(t *testing.T) {
	table := feed.NewTable(
		[]string{"Round", "App Tags"},
		[][]string{
			{"Fall 2026", "Noodle"},
			{"Fall 2026", ""},
		},
	)

	result := DeriveEnrollment(context.Background(), nil, table, testYears)

	assert.Equal(t, "none", result.Method)
	assert.True(t, result.MissingSource)
	assert.Equal(t, []bool{false, false}, result.Enrolled)
	assert.Equal(t, 0, result.EnrolledCount)
}

func TestDeriveEnrollmentColumnAliases(t *testing.T) {
	table := feed.NewTable(
		[]string{"Enrollment Date"},
		[][]string{{"2025-09-01"}},
	)

	result := DeriveEnrollment(context.Background(), nil, table, testYears)

	assert.Equal(t, "date", result.Method)
	assert.Equal(t, "Enrollment Date", result.Column)
	assert.Equal(t, []bool{true}, result.Enrolled)
}
