package funnel

import (
	"context"
	"log/slog"
	"strings"

	"enrollapi/internal/feed"
	"enrollapi/internal/standardize"
	"enrollapi/pkg/contracts/domain"
)

// Raw feed column names. Matching is case-insensitive via feed.Table; a
// missing column reads as blank everywhere, so a short feed export still
// transforms, it just carries less signal.
const (
	colRound            = "Round"
	colProgram          = "Area of Study - Value"
	colSchool           = "School Applied for"
	colDegreeInterest   = "Degree of Interest (app)"
	colDecision         = "Decision Last Name"
	colBin              = "Bin"
	colAppTags          = "App Tags"
	colEmployer         = "If Yes, Name of Sponsoring Employer"
	colCorporateSponsor = "Corporate Sponsor"
	colPartnerException = "Noodle Exception"
	colSpecialProgram   = "Special Program"
)

// professionalCertPrograms force the degree type to Professional Graduate
// Certificate regardless of what the degree-of-interest field said.
// Matched against the standardized program name.
var professionalCertPrograms = []string{
	"Systems Engineering Foundations",
	"Enterprise Ai",
	"Applied Data Science Foundations",
}

// binAdmitValues are the decision-bin values that mean admitted.
var binAdmitValues = map[string]bool{
	"admit":             true,
	"conditional admit": true,
}

// decisionAdmitKeywords mean admitted when the bin is empty (the
// continuing-education path skips the bin entirely).
var decisionAdmitKeywords = []string{
	"admit/matric",
	"admit provisionally",
	"admit/decline",
	"admit/withdraw",
}

// Transformer applies standardization, enrollment derivation and
// classification to one raw population table, producing the uniform
// applicant record shape both populations share.
type Transformer struct {
	logger     *slog.Logger
	validYears []int
}

// NewTransformer creates a population transformer. validYears is the
// rolling reporting window used by the enrollment deriver.
func NewTransformer(logger *slog.Logger, validYears []int) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{logger: logger, validYears: validYears}
}

// Transform converts one raw table into applicant records. The input
// table is never mutated; running Transform twice on the same table
// yields identical output.
//
// Secondary-population rows with a blank decision field do not count as
// applications at all and are dropped here, before any metric sees them.
func (t *Transformer) Transform(ctx context.Context, table *feed.Table, source domain.SourcePopulation, year int) []domain.ApplicantRecord {
	if table.Len() == 0 {
		return nil
	}

	derivation := DeriveEnrollment(ctx, t.logger, table, t.validYears)
	season := inferSeason(table)

	records := make([]domain.ApplicantRecord, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		fields := AppFields{
			Source:           source,
			SchoolApplied:    table.Field(i, colSchool),
			DegreeInterest:   table.Field(i, colDegreeInterest),
			ProgramRaw:       table.Field(i, colProgram),
			AppTags:          table.Field(i, colAppTags),
			Employer:         table.Field(i, colEmployer),
			CorporateSponsor: table.Field(i, colCorporateSponsor),
			PartnerException: table.Field(i, colPartnerException),
			SpecialProgram:   table.Field(i, colSpecialProgram),
		}

		rec := domain.ApplicantRecord{
			Source:            source,
			ReportingYear:     year,
			Season:            season,
			ProgramRaw:        fields.ProgramRaw,
			Program:           standardize.ProgramName(fields.ProgramRaw),
			School:            standardize.SchoolName(fields.SchoolApplied),
			DegreeType:        standardize.DegreeType(fields.DegreeInterest),
			SponsoringCompany: standardize.CompanyName(fields.Employer),
			Enrolled:          derivation.Enrolled[i],
		}

		if isProfessionalCertProgram(rec.Program) {
			rec.DegreeType = standardize.DegreeProfessionalCert
		}
		if rec.DegreeType == standardize.DegreeDualDegree {
			rec.School = standardize.SchoolDualDegree
		}

		decision := table.Field(i, colDecision)
		if source == domain.PopulationSecondary {
			// The secondary channel has no school/degree intake fields.
			rec.DegreeType = standardize.DegreeMasters
			rec.School = standardize.SchoolEngineering
			if fields.SchoolApplied == "" {
				fields.SchoolApplied = standardize.SchoolEngineering
			}

			counted, admitted, accepted, declined := secondaryDecisionFlags(decision)
			if !counted {
				continue
			}
			rec.IsCountedApplication = true
			rec.AdmitStatus = admitStatusFromBool(admitted)
			rec.OfferAccepted = accepted
			rec.OfferDeclined = declined
		} else {
			rec.IsCountedApplication = true
			rec.AdmitStatus = primaryAdmitStatus(table.Field(i, colBin), decision)
			rec.OfferAccepted = strings.EqualFold(strings.TrimSpace(decision), "admit/matric")
			rec.OfferDeclined = strings.Contains(strings.ToLower(decision), "admit/decline")
		}

		rec.Category = Classify(fields)
		records = append(records, rec)
	}

	t.logger.InfoContext(ctx, "transformed population",
		slog.String("source", string(source)),
		slog.Int("year", year),
		slog.Int("raw_rows", table.Len()),
		slog.Int("records", len(records)),
		slog.Int("enrolled", derivation.EnrolledCount))

	return records
}

// primaryAdmitStatus checks the decision bin first; applications routed
// around the bin (continuing education among them) are judged by the
// decision text instead.
func primaryAdmitStatus(bin, decision string) domain.AdmitStatus {
	if binAdmitValues[strings.ToLower(strings.TrimSpace(bin))] {
		return domain.Admitted
	}
	d := strings.ToLower(strings.TrimSpace(decision))
	for _, keyword := range decisionAdmitKeywords {
		if strings.Contains(d, keyword) {
			return domain.Admitted
		}
	}
	return domain.NotAdmitted
}

// secondaryDecisionFlags interprets the secondary channel's free-text
// decision field. A blank field means the row is not an application;
// only approved decisions admit, and accept/decline only count once
// approved.
func secondaryDecisionFlags(raw string) (counted, admitted, accepted, declined bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.TrimSpace(strings.TrimPrefix(s, "-"))

	counted = s != ""
	if !counted {
		return false, false, false, false
	}
	approved := strings.Contains(s, "asap approved") ||
		(strings.Contains(s, "approved") && strings.Contains(s, "asap"))
	admitted = approved
	accepted = approved && strings.Contains(s, "accept")
	declined = approved && strings.Contains(s, "decline")
	return counted, admitted, accepted, declined
}

func admitStatusFromBool(admitted bool) domain.AdmitStatus {
	if admitted {
		return domain.Admitted
	}
	return domain.NotAdmitted
}

// inferSeason scans the round labels for a season word. The whole table
// belongs to one intake season, so the first hit wins.
func inferSeason(table *feed.Table) domain.Season {
	col := table.Resolve(colRound)
	if col == feed.ColumnAbsent {
		return domain.SeasonUnknown
	}
	for _, season := range []domain.Season{domain.SeasonFall, domain.SeasonSummer, domain.SeasonSpring} {
		for i := 0; i < table.Len(); i++ {
			if strings.Contains(strings.ToLower(table.Cell(i, col)), strings.ToLower(string(season))) {
				return season
			}
		}
	}
	return domain.SeasonUnknown
}

func isProfessionalCertProgram(program string) bool {
	for _, p := range professionalCertPrograms {
		if strings.Contains(strings.ToLower(program), strings.ToLower(p)) {
			return true
		}
	}
	return false
}
