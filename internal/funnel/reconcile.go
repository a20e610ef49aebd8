package funnel

import (
	"enrollapi/pkg/contracts/domain"
)

// BuildEnrollmentBreakdown combines the two sources into one headcount
// view. This is the only place pipeline and census figures meet, which
// keeps the no-double-count rule enforceable in one function:
//
//   - "new" comes from pipeline enrollments (applied-and-enrolled this
//     cycle, with date fidelity the census lacks);
//   - continuing and returning come from the census;
//   - the census's own New count describes an overlapping population and
//     is carried for display only, never added to the total.
func BuildEnrollmentBreakdown(pipeline domain.FunnelMetrics, census domain.CensusStatusCounts) domain.EnrollmentBreakdown {
	return domain.EnrollmentBreakdown{
		NewFromPipeline: pipeline.Enrollments,
		CensusNew:       census.New,
		Continuing:      census.Continuing,
		Returning:       census.Returning,
	}
}
