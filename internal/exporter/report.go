// Package exporter renders the computed dashboard into downloadable
// report files. The report is a list of named tables; the CSV writer
// emits them as stacked sections, the XLSX writer as one sheet each.
package exporter

import (
	"fmt"
	"sort"
	"strconv"

	"enrollapi/internal/services"
	"enrollapi/pkg/contracts/domain"
)

// Sheet is one named table of the report.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Report is the full exportable view of a dashboard snapshot.
type Report struct {
	Semester string
	Sheets   []Sheet
}

// BuildReport flattens the dashboard payload into report sheets.
func BuildReport(data *services.DashboardData) *Report {
	return &Report{
		Semester: data.Semester,
		Sheets: []Sheet{
			funnelSheet(data),
			breakdownSheet("Funnel by Category", data.Years, data.ByCategory),
			breakdownSheet("Funnel by School", data.Years, data.BySchool),
			breakdownSheet("Funnel by Degree", data.Years, data.ByDegree),
			enrollmentSheet(data),
			ntrSheet(data),
			ntrProgramSheet(data),
			ratesSheet(data),
		},
	}
}

func funnelSheet(data *services.DashboardData) Sheet {
	sheet := Sheet{
		Name: "Funnel",
		Headers: []string{"Year", "Applications", "Admits", "Offers Accepted",
			"Enrollments", "Admit Rate", "Yield Rate", "Overall Conversion"},
	}
	for _, year := range data.Years {
		m := data.FunnelByYear[year]
		sheet.Rows = append(sheet.Rows, []string{
			strconv.Itoa(year),
			strconv.Itoa(m.Applications),
			strconv.Itoa(m.Admits),
			strconv.Itoa(m.OffersAccepted),
			strconv.Itoa(m.Enrollments),
			percent(m.AdmitRate()),
			percent(m.YieldRate()),
			percent(m.OverallConversion()),
		})
	}
	return sheet
}

func breakdownSheet(name string, years []int, breakdown map[string]map[int]domain.FunnelMetrics) Sheet {
	headers := []string{"Group"}
	for _, year := range years {
		y := strconv.Itoa(year)
		headers = append(headers, y+" Apps", y+" Admits", y+" Enrolls")
	}
	sheet := Sheet{Name: name, Headers: headers}

	keys := make([]string, 0, len(breakdown))
	for key := range breakdown {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		row := []string{key}
		for _, year := range years {
			m := breakdown[key][year]
			row = append(row,
				strconv.Itoa(m.Applications),
				strconv.Itoa(m.Admits),
				strconv.Itoa(m.Enrollments))
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}

func enrollmentSheet(data *services.DashboardData) Sheet {
	b := data.Enrollment
	return Sheet{
		Name:    "Enrollment",
		Headers: []string{"Component", "Students"},
		Rows: [][]string{
			{"New from pipeline", strconv.Itoa(b.NewFromPipeline)},
			{"Continuing (census)", strconv.Itoa(b.Continuing)},
			{"Returning (census)", strconv.Itoa(b.Returning)},
			{"Total", strconv.Itoa(b.Total())},
			{"Census new (reference)", strconv.Itoa(b.CensusNew)},
		},
	}
}

func ntrSheet(data *services.DashboardData) Sheet {
	sheet := Sheet{
		Name: "NTR",
		Headers: []string{"Category", "Degree Type", "New Students", "Current Students",
			"New Credits", "Current Credits", "Rate New", "Rate Current", "Total NTR"},
	}
	for _, g := range data.NTRByGroup {
		sheet.Rows = append(sheet.Rows, []string{
			string(g.Category),
			g.DegreeType,
			strconv.Itoa(g.NewStudents),
			strconv.Itoa(g.CurrentStudents),
			money(g.NewCredits),
			money(g.CurrentCredits),
			money(g.RateNew),
			money(g.RateCurrent),
			money(g.TotalNTR),
		})
	}
	sheet.Rows = append(sheet.Rows,
		[]string{"Total", "", strconv.Itoa(data.NTR.NewStudents), strconv.Itoa(data.NTR.CurrentStudents),
			money(data.NTR.NewCredits), money(data.NTR.CurrentCredits), "", "", money(data.NTR.TotalNTR)},
		[]string{"Goal", "", "", "", "", "", "", "", money(data.NTR.Goal)},
		[]string{"Percent of Goal", "", "", "", "", "", "", "", percent(data.NTR.PercentOfGoal)},
		[]string{"Gap to Goal", "", "", "", "", "", "", "", money(data.NTR.GapToGoal)},
	)
	return sheet
}

func ntrProgramSheet(data *services.DashboardData) Sheet {
	sheet := Sheet{
		Name:    "NTR by Program",
		Headers: []string{"Program", "Students", "Credits", "NTR"},
	}
	for _, p := range data.NTRByProgram {
		sheet.Rows = append(sheet.Rows, []string{
			p.Program,
			strconv.Itoa(p.Students),
			money(p.Credits),
			money(p.NTR),
		})
	}
	return sheet
}

func ratesSheet(data *services.DashboardData) Sheet {
	sheet := Sheet{
		Name:    "Rates",
		Headers: []string{"Category", "Degree Type", "Rate New", "Rate Current"},
	}
	for _, e := range data.Rates {
		sheet.Rows = append(sheet.Rows, []string{
			string(e.Category),
			e.DegreeType,
			money(e.RateNew),
			money(e.RateCurrent),
		})
	}
	return sheet
}

// percent formats an already-scaled percentage value.
func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
