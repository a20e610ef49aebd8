package funnel

import (
	"sort"

	"enrollapi/pkg/contracts/domain"
)

// ComputeFunnelMetrics reduces one year's applicant records to the four
// stage counts. Each stage is its own predicate and each record
// contributes at most one unit per stage; there is no funneling
// assumption between stages.
func ComputeFunnelMetrics(records []domain.ApplicantRecord, year int) domain.FunnelMetrics {
	m := domain.FunnelMetrics{Year: year}
	for _, r := range records {
		if r.IsCountedApplication {
			m.Applications++
		}
		if r.AdmitStatus == domain.Admitted {
			m.Admits++
		}
		if r.OfferAccepted {
			m.OffersAccepted++
		}
		if r.Enrolled {
			m.Enrollments++
		}
	}
	return m
}

// FieldSelector picks the grouping value for a breakdown.
type FieldSelector struct {
	Name   string
	Select func(domain.ApplicantRecord) string
}

// Predefined grouping selectors.
var (
	ByCategory = FieldSelector{Name: "category", Select: func(r domain.ApplicantRecord) string { return string(r.Category) }}
	BySchool   = FieldSelector{Name: "school", Select: func(r domain.ApplicantRecord) string { return r.School }}
	ByDegree   = FieldSelector{Name: "degree", Select: func(r domain.ApplicantRecord) string { return r.DegreeType }}
)

// ComputeBreakdownByField groups each year's records by the selector and
// aggregates every group independently. The key set is the union of
// values across all years, so a value present in only one year still
// appears in the others with zero metrics; year-over-year tables never
// hit a missing key. Blank values are unclassifiable rows, not a group,
// and are excluded.
func ComputeBreakdownByField(years map[int][]domain.ApplicantRecord, sel FieldSelector) map[string]map[int]domain.FunnelMetrics {
	values := map[string]bool{}
	for _, records := range years {
		for _, r := range records {
			if v := sel.Select(r); v != "" {
				values[v] = true
			}
		}
	}

	breakdown := make(map[string]map[int]domain.FunnelMetrics, len(values))
	for value := range values {
		perYear := make(map[int]domain.FunnelMetrics, len(years))
		for year, records := range years {
			var matched []domain.ApplicantRecord
			for _, r := range records {
				if sel.Select(r) == value {
					matched = append(matched, r)
				}
			}
			perYear[year] = ComputeFunnelMetrics(matched, year)
		}
		breakdown[value] = perYear
	}
	return breakdown
}

// ProgramStats summarizes one program across the current and previous
// year.
type ProgramStats struct {
	Program          string  `json:"program"`
	School           string  `json:"school"`
	DegreeType       string  `json:"degree_type"`
	Applications     int     `json:"applications"`
	Admits           int     `json:"admits"`
	Enrollments      int     `json:"enrollments"`
	PrevApplications int     `json:"prev_applications"`
	PrevAdmits       int     `json:"prev_admits"`
	PrevEnrollments  int     `json:"prev_enrollments"`
	AppsChangePct    float64 `json:"apps_change_pct"`
}

// AdmitRate returns admits/applications for the current year.
func (p ProgramStats) AdmitRate() float64 {
	return domain.SafeDivide(float64(p.Admits), float64(p.Applications)) * 100
}

// YieldRate returns enrollments/admits for the current year.
func (p ProgramStats) YieldRate() float64 {
	return domain.SafeDivide(float64(p.Enrollments), float64(p.Admits)) * 100
}

// ComputeProgramStats builds per-program stats from the current year's
// records with previous-year comparison, sorted by current applications
// descending. Programs with a blank standardized name are skipped.
func ComputeProgramStats(current, previous []domain.ApplicantRecord) []ProgramStats {
	byProgram := map[string][]domain.ApplicantRecord{}
	var order []string
	for _, r := range current {
		if r.Program == "" {
			continue
		}
		if _, seen := byProgram[r.Program]; !seen {
			order = append(order, r.Program)
		}
		byProgram[r.Program] = append(byProgram[r.Program], r)
	}

	prevByProgram := map[string][]domain.ApplicantRecord{}
	for _, r := range previous {
		if r.Program != "" {
			prevByProgram[r.Program] = append(prevByProgram[r.Program], r)
		}
	}

	stats := make([]ProgramStats, 0, len(order))
	for _, program := range order {
		records := byProgram[program]
		cur := ComputeFunnelMetrics(records, 0)
		prev := ComputeFunnelMetrics(prevByProgram[program], 0)

		stats = append(stats, ProgramStats{
			Program:          program,
			School:           modeValue(records, func(r domain.ApplicantRecord) string { return r.School }),
			DegreeType:       modeValue(records, func(r domain.ApplicantRecord) string { return r.DegreeType }),
			Applications:     cur.Applications,
			Admits:           cur.Admits,
			Enrollments:      cur.Enrollments,
			PrevApplications: prev.Applications,
			PrevAdmits:       prev.Admits,
			PrevEnrollments:  prev.Enrollments,
			AppsChangePct: domain.SafeDivide(
				float64(cur.Applications-prev.Applications),
				float64(prev.Applications)) * 100,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Applications > stats[j].Applications
	})
	return stats
}

// minPrevAppsForTrend filters out tiny programs whose YoY percentage is
// noise.
const minPrevAppsForTrend = 5

// TopPrograms returns the n programs with the most current enrollments.
func TopPrograms(stats []ProgramStats, n int) []ProgramStats {
	sorted := append([]ProgramStats(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Enrollments > sorted[j].Enrollments
	})
	return truncate(sorted, n)
}

// TrendingPrograms returns the n programs with the highest YoY growth
// among those with a meaningful prior-year base.
func TrendingPrograms(stats []ProgramStats, n int) []ProgramStats {
	eligible := withPrevBase(stats)
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].AppsChangePct > eligible[j].AppsChangePct
	})
	return truncate(eligible, n)
}

// DecliningPrograms returns the n programs with the steepest YoY decline
// among those with a meaningful prior-year base.
func DecliningPrograms(stats []ProgramStats, n int) []ProgramStats {
	eligible := withPrevBase(stats)
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].AppsChangePct < eligible[j].AppsChangePct
	})
	return truncate(eligible, n)
}

// CorporateCohort aggregates the pipeline for one sponsoring company.
type CorporateCohort struct {
	Company      string `json:"company"`
	Applications int    `json:"applications"`
	Admits       int    `json:"admits"`
	Enrollments  int    `json:"enrollments"`
}

// ComputeCorporateStats groups counted applications by normalized
// sponsoring company (rows without a sponsor are not corporate), sorted
// by enrollments descending.
func ComputeCorporateStats(records []domain.ApplicantRecord) []CorporateCohort {
	byCompany := map[string]*CorporateCohort{}
	var order []string
	for _, r := range records {
		if r.SponsoringCompany == "" {
			continue
		}
		cohort, ok := byCompany[r.SponsoringCompany]
		if !ok {
			cohort = &CorporateCohort{Company: r.SponsoringCompany}
			byCompany[r.SponsoringCompany] = cohort
			order = append(order, r.SponsoringCompany)
		}
		if r.IsCountedApplication {
			cohort.Applications++
		}
		if r.AdmitStatus == domain.Admitted {
			cohort.Admits++
		}
		if r.Enrolled {
			cohort.Enrollments++
		}
	}

	cohorts := make([]CorporateCohort, 0, len(order))
	for _, company := range order {
		cohorts = append(cohorts, *byCompany[company])
	}
	sort.SliceStable(cohorts, func(i, j int) bool {
		return cohorts[i].Enrollments > cohorts[j].Enrollments
	})
	return cohorts
}

func withPrevBase(stats []ProgramStats) []ProgramStats {
	var eligible []ProgramStats
	for _, s := range stats {
		if s.PrevApplications >= minPrevAppsForTrend {
			eligible = append(eligible, s)
		}
	}
	return eligible
}

func truncate(stats []ProgramStats, n int) []ProgramStats {
	if n > 0 && len(stats) > n {
		return stats[:n]
	}
	return stats
}

// modeValue returns the most frequent non-blank value of the selector,
// breaking ties by first appearance.
func modeValue(records []domain.ApplicantRecord, sel func(domain.ApplicantRecord) string) string {
	counts := map[string]int{}
	var best string
	bestCount := 0
	for _, r := range records {
		v := sel(r)
		if v == "" {
			continue
		}
		counts[v]++
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
