package domain

// SafeDivide returns num/den, or 0 when the denominator is 0. Every rate
// in the engine goes through this guard so a zero-application year reads
// as 0% instead of NaN.
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// FunnelMetrics holds the four funnel stage counts for one year (and
// optionally one grouping value). Rates are computed on read, never
// stored.
//
// The stages are independent predicates over the same records: messy data
// can legitimately yield enrollments that exceed offers accepted, so no
// monotonicity is enforced or assumed.
type FunnelMetrics struct {
	Year           int `json:"year"`
	Applications   int `json:"applications"`
	Admits         int `json:"admits"`
	OffersAccepted int `json:"offers_accepted"`
	Enrollments    int `json:"enrollments"`
}

// AdmitRate returns admits/applications as a percentage.
func (m FunnelMetrics) AdmitRate() float64 {
	return SafeDivide(float64(m.Admits), float64(m.Applications)) * 100
}

// OfferRate returns offers accepted/admits as a percentage.
func (m FunnelMetrics) OfferRate() float64 {
	return SafeDivide(float64(m.OffersAccepted), float64(m.Admits)) * 100
}

// YieldRate returns enrollments/admits as a percentage.
func (m FunnelMetrics) YieldRate() float64 {
	return SafeDivide(float64(m.Enrollments), float64(m.Admits)) * 100
}

// OverallConversion returns enrollments/applications as a percentage.
func (m FunnelMetrics) OverallConversion() float64 {
	return SafeDivide(float64(m.Enrollments), float64(m.Applications)) * 100
}

// YoYComparison compares two years of funnel metrics.
type YoYComparison struct {
	Current  FunnelMetrics `json:"current"`
	Previous FunnelMetrics `json:"previous"`
}

// ApplicationsChange returns the percent change in applications.
func (y YoYComparison) ApplicationsChange() float64 {
	return SafeDivide(float64(y.Current.Applications-y.Previous.Applications),
		float64(y.Previous.Applications)) * 100
}

// AdmitsChange returns the percent change in admits.
func (y YoYComparison) AdmitsChange() float64 {
	return SafeDivide(float64(y.Current.Admits-y.Previous.Admits),
		float64(y.Previous.Admits)) * 100
}

// EnrollmentsChange returns the percent change in enrollments.
func (y YoYComparison) EnrollmentsChange() float64 {
	return SafeDivide(float64(y.Current.Enrollments-y.Previous.Enrollments),
		float64(y.Previous.Enrollments)) * 100
}

// FunnelStage is one stage/value pair for funnel-shaped charts.
type FunnelStage struct {
	Stage string `json:"stage"`
	Value int    `json:"value"`
}

// Stages returns the chart-ready stage series for the metrics.
func (m FunnelMetrics) Stages() []FunnelStage {
	return []FunnelStage{
		{Stage: "Applications", Value: m.Applications},
		{Stage: "Admits", Value: m.Admits},
		{Stage: "Offers Accepted", Value: m.OffersAccepted},
		{Stage: "Enrollments", Value: m.Enrollments},
	}
}

// EnrollmentBreakdown reconciles the two sources into one headcount view.
// NewFromPipeline comes from the applications pipeline (better date
// fidelity); Continuing and Returning come from the census. CensusNew is
// carried for display next to the pipeline figure but is deliberately
// excluded from Total: the two "new" populations overlap and adding both
// would double count.
type EnrollmentBreakdown struct {
	NewFromPipeline int `json:"new_from_pipeline"`
	CensusNew       int `json:"census_new"`
	Continuing      int `json:"continuing"`
	Returning       int `json:"returning"`
}

// Total returns pipeline new + census continuing + census returning.
func (b EnrollmentBreakdown) Total() int {
	return b.NewFromPipeline + b.Continuing + b.Returning
}
