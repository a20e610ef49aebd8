// Package standardize normalizes raw free-text feed fields into canonical
// values. Every function here is pure and total: malformed or empty input
// produces a documented default, never an error.
package standardize

import (
	"strings"
	"unicode"
)

// Canonical school names produced by StandardizeSchoolName.
const (
	SchoolBusiness       = "Business"
	SchoolEngineering    = "Engineering"
	SchoolContinuingEd   = "Professional Education"
	SchoolDualDegree     = "Dual Degree"
	continuingEdMarker   = "PROFESSIONAL ED"
)

// Canonical degree types produced by StandardizeDegreeType.
const (
	DegreeMasters          = "Masters"
	DegreeGradCert         = "Graduate Certificate"
	DegreeProfessionalCert = "Professional Graduate Certificate"
	DegreeDualDegree       = "Dual Degree"
	DegreeNonDegree        = "Non-Degree"
)

// schoolMappings maps uppercased raw school values to canonical names.
// Values not covered here fall back to Dual Degree.
var schoolMappings = map[string]string{
	"SOB":                              SchoolBusiness,
	"SCHOOL OF BUSINESS":               SchoolBusiness,
	"SOE":                              SchoolEngineering,
	"SES":                              SchoolEngineering,
	"SSE":                              SchoolEngineering,
	"SCHOOL OF ENGINEERING":            SchoolEngineering,
	"SCHOOL OF ENGINEERING AND SCIENCE": SchoolEngineering,
	"SCHOOL OF SYSTEMS AND ENTERPRISES": SchoolEngineering,
	"DUAL DEGREE":                      SchoolDualDegree,
}

// programNoise lists substrings stripped from raw program names before
// title-casing. All entries must be lowercase.
var programNoise = []string{
	"(online)",
	"mba -",
	"(mba)",
}

// continuingEdPrograms lists lowercase keywords that identify a program as
// belonging to the continuing-education unit even when the school field
// says otherwise.
var continuingEdPrograms = []string{
	"applied data science",
	"meads",
	"enterprise ai",
	"enterprise artificial intelligence",
	"ads foundations",
	"applied data science foundations",
}

// companyMapping is an ordered keyword table for sponsor normalization.
// Order matters: the first keyword contained in the input wins, so more
// specific keywords must precede generic ones.
type companyMapping struct {
	keyword string
	name    string
}

var companyMappings = []companyMapping{
	{"pfizer", "Pfizer"},
	{"collins", "Collins Aerospace"},
	{"bae", "BAE Systems"},
	{"bank of america", "Bank of America"},
	{"merrill lynch", "Bank of America"},
	{"l3harris", "L3Harris"},
	{"l3", "L3Harris"},
	{"astra", "AstraZeneca"},
	{"northrop", "Northrop Grumman"},
	{"ngc", "Northrop Grumman"},
	{"verizon", "Verizon"},
	{"jpmorgan", "JPMorgan Chase"},
	{"jp morgan", "JPMorgan Chase"},
	{"jpmc", "JPMorgan Chase"},
	{"lockheed", "Lockheed Martin"},
	{"boeing", "Boeing"},
	{"raytheon", "Raytheon Technologies"},
	{"rtx", "Raytheon Technologies"},
	{"navair", "NAVAIR"},
	{"us army", "US Army"},
	{"picatinny", "US Army"},
	{"devcom", "US Army"},
}

// ProgramName lowercases the raw program name, strips known noise
// substrings and returns the remainder title-cased. Empty input yields "".
func ProgramName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return ""
	}
	for _, noise := range programNoise {
		name = strings.TrimSpace(strings.ReplaceAll(name, noise, ""))
	}
	return titleCase(name)
}

// SchoolName maps a raw school value to one of the canonical school names.
// The continuing-education marker is checked before the empty/dual-degree
// fallback so a value like "Office of Professional Education" never lands
// in Dual Degree. Unmapped values fall back to Dual Degree.
func SchoolName(raw string) string {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if strings.Contains(name, continuingEdMarker) {
		return SchoolContinuingEd
	}
	if name == "" || strings.Contains(name, "DUAL") {
		return SchoolDualDegree
	}
	if canonical, ok := schoolMappings[name]; ok {
		return canonical
	}
	return SchoolDualDegree
}

// DegreeType classifies a degree-of-interest value. Anything that is not a
// certificate or a dual degree is assumed to be a Masters: that is the
// dominant population and blank-ish degree text almost always means a
// Masters applicant. Empty input yields "".
func DegreeType(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return ""
	}
	if strings.Contains(text, "certificate") {
		return DegreeGradCert
	}
	if strings.Contains(text, "dual") {
		return DegreeDualDegree
	}
	return DegreeMasters
}

// CompanyName normalizes a sponsoring-employer value via the ordered
// keyword table; inputs matching no keyword are title-cased as-is.
func CompanyName(raw string) string {
	original := strings.ToLower(strings.TrimSpace(raw))
	if original == "" {
		return ""
	}
	for _, m := range companyMappings {
		if strings.Contains(original, m.keyword) {
			return m.name
		}
	}
	return titleCase(original)
}

// IsContinuingEdSchool reports whether a school value names the
// continuing-education unit. Used by the census categorizer, whose rows
// carry a school string but none of the application-funnel fields.
func IsContinuingEdSchool(schoolName string) bool {
	return strings.Contains(strings.ToUpper(strings.TrimSpace(schoolName)), continuingEdMarker)
}

// IsContinuingEdProgram reports whether a program name belongs to the
// continuing-education catalog.
func IsContinuingEdProgram(programName string) bool {
	p := strings.ToLower(strings.TrimSpace(programName))
	if p == "" {
		return false
	}
	for _, keyword := range continuingEdPrograms {
		if strings.Contains(p, keyword) {
			return true
		}
	}
	return false
}

// titleCase uppercases the first letter of every space-separated word and
// lowercases the rest, matching how the feeds display program and company
// names.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
