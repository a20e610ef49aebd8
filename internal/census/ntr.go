package census

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"enrollapi/internal/standardize"
	"enrollapi/pkg/contracts/domain"
)

// ntrDegrees are the degree types priced by the rate table. The
// professional certificate joins the census scope here because
// continuing-education rows carry it after the program-based override.
var ntrDegrees = map[string]bool{
	standardize.DegreeMasters:          true,
	standardize.DegreeGradCert:         true,
	standardize.DegreeNonDegree:        true,
	standardize.DegreeProfessionalCert: true,
}

// Continuing-education program names used to pick the priced degree type
// when the census degree field disagrees with the program catalog.
var (
	ceMastersPrograms = []string{
		"applied data science",
		"meads",
		"master of engineering in applied data science",
		"me in applied data science",
	}
	ceCertificatePrograms = []string{
		"enterprise ai",
		"enterprise artificial intelligence",
		"professional graduate certificate in enterprise ai",
		"applied data science foundations",
		"ads foundations",
		"professional graduate certificate in applied data science foundations",
		"systems engineering foundations",
	}
)

// Engine computes net tuition revenue from categorized census records.
type Engine struct {
	logger *slog.Logger
	rates  RateTable
	goal   float64
}

// NewEngine creates an NTR engine. A nil rate table uses the compiled
// defaults.
func NewEngine(logger *slog.Logger, rates RateTable, goal float64) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rates == nil {
		rates = DefaultRateTable()
	}
	return &Engine{logger: logger, rates: rates, goal: goal}
}

// Rates exposes the engine's rate table for reference output.
func (e *Engine) Rates() RateTable {
	return e.rates
}

// Calculate groups the records by (category, degree type, student type),
// prices each group's credits and sums across groups. Uncategorized rows
// are filtered here, before any money math; every observed group missing
// from the rate table contributes 0 and is listed in the summary's
// RateGaps.
func (e *Engine) Calculate(ctx context.Context, records []domain.CensusStudentRecord) (domain.NTRSummary, []domain.CategoryNTR) {
	type groupKey struct {
		category domain.Category
		degree   string
	}
	type group struct {
		students map[domain.StudentType]map[string]bool
		credits  map[domain.StudentType]float64
	}

	groups := map[groupKey]*group{}
	var order []groupKey
	for _, r := range records {
		if r.Category == domain.CategoryUncategorized || !ntrDegrees[r.DegreeType] {
			continue
		}
		key := groupKey{r.Category, r.DegreeType}
		g, ok := groups[key]
		if !ok {
			g = &group{
				students: map[domain.StudentType]map[string]bool{
					domain.TypeNew:     {},
					domain.TypeCurrent: {},
				},
				credits: map[domain.StudentType]float64{},
			}
			groups[key] = g
			order = append(order, key)
		}
		g.students[r.Type][r.StudentID] = true
		g.credits[r.Type] += r.Credits
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].category != order[j].category {
			return order[i].category < order[j].category
		}
		return order[i].degree < order[j].degree
	})

	summary := domain.NTRSummary{Goal: e.goal}
	breakdown := make([]domain.CategoryNTR, 0, len(order))
	for _, key := range order {
		g := groups[key]
		newStudents := len(g.students[domain.TypeNew])
		currentStudents := len(g.students[domain.TypeCurrent])
		newCredits := g.credits[domain.TypeNew]
		currentCredits := g.credits[domain.TypeCurrent]

		rateNew := e.rateOrGap(&summary, key.category, key.degree, domain.TypeNew, newStudents, newCredits)
		rateCurrent := e.rateOrGap(&summary, key.category, key.degree, domain.TypeCurrent, currentStudents, currentCredits)

		entry := domain.CategoryNTR{
			Category:        key.category,
			DegreeType:      key.degree,
			NewStudents:     newStudents,
			CurrentStudents: currentStudents,
			TotalStudents:   newStudents + currentStudents,
			NewCredits:      newCredits,
			CurrentCredits:  currentCredits,
			TotalCredits:    newCredits + currentCredits,
			RateNew:         rateNew,
			RateCurrent:     rateCurrent,
			NTRNew:          newCredits * rateNew,
			NTRCurrent:      currentCredits * rateCurrent,
		}
		entry.TotalNTR = entry.NTRNew + entry.NTRCurrent
		breakdown = append(breakdown, entry)

		summary.TotalNTR += entry.TotalNTR
		summary.TotalStudents += entry.TotalStudents
		summary.TotalCredits += entry.TotalCredits
		summary.NewStudents += entry.NewStudents
		summary.CurrentStudents += entry.CurrentStudents
		summary.NewCredits += entry.NewCredits
		summary.CurrentCredits += entry.CurrentCredits
		summary.NewNTR += entry.NTRNew
		summary.CurrentNTR += entry.NTRCurrent
	}

	if e.goal > 0 {
		summary.PercentOfGoal = summary.TotalNTR / e.goal * 100
	}
	summary.GapToGoal = e.goal - summary.TotalNTR

	if len(summary.RateGaps) > 0 {
		e.logger.WarnContext(ctx, "rate table gaps observed; affected groups priced at zero",
			slog.Int("gaps", len(summary.RateGaps)))
	}

	return summary, breakdown
}

// rateOrGap looks up one rate and records a gap entry when the key is
// missing but the group actually occurred in data.
func (e *Engine) rateOrGap(summary *domain.NTRSummary, category domain.Category, degree string, studentType domain.StudentType, students int, credits float64) float64 {
	rate, ok := e.rates.Lookup(category, degree, studentType)
	if !ok && (students > 0 || credits > 0) {
		summary.RateGaps = append(summary.RateGaps, domain.RateGap{
			Category:    category,
			DegreeType:  degree,
			StudentType: studentType,
			Students:    students,
			Credits:     credits,
		})
	}
	return rate
}

// ByProgram prices each row individually and aggregates by program,
// sorted by revenue descending. Continuing-education rows are priced at
// the degree type their program implies, not the raw census degree field.
func (e *Engine) ByProgram(records []domain.CensusStudentRecord) []domain.ProgramNTR {
	type agg struct {
		students map[string]bool
		credits  float64
		ntr      float64
	}

	byProgram := map[string]*agg{}
	var order []string
	for _, r := range records {
		if r.Category == domain.CategoryUncategorized || !ntrDegrees[r.DegreeType] || r.Program == "" {
			continue
		}

		degree := r.DegreeType
		if r.Category == domain.CategoryContinuingEd {
			degree = continuingEdDegree(r.Program, degree)
		}
		rate, _ := e.rates.Lookup(r.Category, degree, r.Type)

		a, ok := byProgram[r.Program]
		if !ok {
			a = &agg{students: map[string]bool{}}
			byProgram[r.Program] = a
			order = append(order, r.Program)
		}
		a.students[r.StudentID] = true
		a.credits += r.Credits
		a.ntr += r.Credits * rate
	}

	programs := make([]domain.ProgramNTR, 0, len(order))
	for _, name := range order {
		a := byProgram[name]
		programs = append(programs, domain.ProgramNTR{
			Program:  name,
			Students: len(a.students),
			Credits:  a.credits,
			NTR:      a.ntr,
		})
	}
	sort.SliceStable(programs, func(i, j int) bool {
		return programs[i].NTR > programs[j].NTR
	})
	return programs
}

// continuingEdDegree picks the priced degree type for a
// continuing-education program, keeping the fallback when the program is
// not in either catalog list. Certificates are checked first: their
// names contain the masters program names as substrings.
func continuingEdDegree(program, fallback string) string {
	p := strings.ToLower(strings.TrimSpace(program))
	for _, keyword := range ceCertificatePrograms {
		if strings.Contains(p, keyword) {
			return standardize.DegreeProfessionalCert
		}
	}
	for _, keyword := range ceMastersPrograms {
		if strings.Contains(p, keyword) {
			return standardize.DegreeMasters
		}
	}
	return fallback
}
