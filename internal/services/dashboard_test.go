package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollapi/internal/config"
	"enrollapi/internal/infrastructure"
	"enrollapi/pkg/contracts/domain"
)

const applicationsCSV = `Round,Area of Study - Value,School Applied for,Degree of Interest (app),Decision Last Name,Bin,App Tags,Date of Enrollment
Fall 2026,Computer Science,SSE,Master of Science,Admit/Matric,Admit,Noodle,2026-08-15
Fall 2026,Computer Science,SSE,Master of Science,Deny,Deny,,
Fall 2025,Computer Science,SSE,Master of Science,Admit/Matric,Admit,,2025-08-15
ASAP,,,,- ASAP Approved - Accepted,,,
ASAP,,,,,,,
`

const censusCSV = `Census_1_STUDENT_ID,Census_1_SEMESTER,Census_1_STUDENT_LOCATION_DETAILED,Census_1_DEGREE_TYPE,Census_1_CORPORATE_STUDENT,Census_1_CORPORATE_COHORT,Census_1_BEACON_FLAG,Census_1_STUDENT_STATUS,Census_1_ENROLLED_IN_PREVIOUS_SUMMER_SEMESTER_AS_NEW,Census_1_CENSUS3_TOTAL_NUMBER_OF_CREDIT_HOURS,Census_1_PRIMARY_PROGRAM_OF_STUDY,Census_1_SCHOOL
S1,2026S,Online,Masters,,,0,New,0,6,Computer Science,SSE
S2,2026S,Online,Masters,,,0,Continuing,0,9,Computer Science,SSE
S3,2026S,On Campus,Masters,,,0,New,0,12,Computer Science,SSE
`

func testService(t *testing.T) *DashboardService {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "applications.csv"), []byte(applicationsCSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "census.csv"), []byte(censusCSV), 0644))

	cfg := config.Default()
	cfg.Feeds.DataDir = dir
	cfg.Feeds.ApplicationPattern = "applications*.csv"
	cfg.Feeds.CensusPattern = "census*.csv"
	cfg.Reporting.CurrentYear = 2026
	cfg.Reporting.Semester = "2026S"
	cfg.Reporting.NTRGoal = 100_000

	svc, err := NewDashboardService(cfg, nil, infrastructure.NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, err)
	return svc
}

func TestRunFullPipeline(t *testing.T) {
	svc := testService(t)
	data, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2024, 2025, 2026}, data.Years)
	assert.Equal(t, "2026S", data.Semester)

	// Current year carries two primary rows plus the one secondary row
	// with a real decision; the blank-decision secondary row vanished.
	current := data.FunnelByYear[2026]
	assert.Equal(t, 3, current.Applications)
	assert.Equal(t, 2, current.Admits)
	assert.Equal(t, 1, current.Enrollments)

	previous := data.FunnelByYear[2025]
	assert.Equal(t, 1, previous.Applications)
	assert.Equal(t, 1, previous.Enrollments)

	assert.Equal(t, domain.FunnelMetrics{Year: 2024}, data.FunnelByYear[2024])
	require.Len(t, data.YoY, 2)

	// Census: S3 is out of scope, S1 is new, S2 continuing.
	assert.Equal(t, 1, data.CensusCounts.New)
	assert.Equal(t, 1, data.CensusCounts.Continuing)
	assert.Equal(t, 2, data.CensusCounts.Total)

	assert.Equal(t, 1, data.Enrollment.NewFromPipeline)
	assert.Equal(t, 1, data.Enrollment.Continuing)
	assert.Equal(t, 2, data.Enrollment.Total())

	// Retail masters: 6 credits at the new rate, 9 at the current rate.
	expectedNTR := 6*1395.0 + 9*1723.0
	assert.InDelta(t, expectedNTR, data.NTR.TotalNTR, 0.001)
	assert.InDelta(t, expectedNTR/100_000*100, data.NTR.PercentOfGoal, 0.001)
	assert.Empty(t, data.NTR.RateGaps)

	require.NotEmpty(t, data.NTRByProgram)
	assert.Equal(t, "Computer Science", data.NTRByProgram[0].Program)

	assert.NotEmpty(t, data.ByCategory)
	assert.Contains(t, data.ByCategory, string(domain.CategoryASAP))
	assert.Contains(t, data.ByCategory, string(domain.CategoryPartnerOnline))
}

func TestDashboardServesCachedSnapshot(t *testing.T) {
	svc := testService(t)

	first, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	second, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	refreshed, err := svc.Refresh(context.Background(), "manual")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, refreshed.ID, "refresh replaces the snapshot")
}

func TestRunFailsWithoutFeeds(t *testing.T) {
	cfg := config.Default()
	cfg.Feeds.DataDir = t.TempDir()

	svc, err := NewDashboardService(cfg, nil, nil)
	require.NoError(t, err)

	_, err = svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application feed")
}
