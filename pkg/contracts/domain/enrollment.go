// Package domain contains the shared data contracts of the enrollment
// analytics engine: the canonical enums, the per-row record shapes and the
// aggregate output structures consumed by presentation, export and
// chat-context collaborators. Everything here is plain data with read-only
// accessors; pipeline behavior lives under internal/.
package domain

// SourcePopulation identifies which raw feed produced an application row.
type SourcePopulation string

const (
	// PopulationPrimary is the main admissions pipeline feed.
	PopulationPrimary SourcePopulation = "MAIN"
	// PopulationSecondary is the ASAP channel: a subset of the feed tagged
	// by its round value, with free-text decision semantics.
	PopulationSecondary SourcePopulation = "ASAP"
)

// Category is the canonical channel/segment classification. The same
// category space is shared by the application classifier and the census
// categorizer, though the two compute it from different fields.
type Category string

const (
	CategoryContinuingEd  Category = "Continuing Education"
	CategoryASAP          Category = "ASAP"
	CategoryPartnerOnline Category = "Partner Online"
	CategoryBeacon        Category = "Beacon"
	CategoryCorporate     Category = "Corporate"
	CategoryRetail        Category = "Retail"
	CategorySpecial       Category = "Special Program"
	// CategoryUncategorized is a visible sentinel produced only by the
	// census categorizer. It is never silently folded into Retail: NTR
	// callers must filter it explicitly or the gap shows up in reports.
	CategoryUncategorized Category = "Uncategorized"
)

// AdmitStatus is the binary admissions outcome of an application.
type AdmitStatus string

const (
	Admitted    AdmitStatus = "admitted"
	NotAdmitted AdmitStatus = "not admitted"
)

// Season is the academic season inferred from the round label.
type Season string

const (
	SeasonFall    Season = "Fall"
	SeasonSpring  Season = "Spring"
	SeasonSummer  Season = "Summer"
	SeasonUnknown Season = "Unknown"
)

// ApplicantRecord is one application row after transformation. Rows are
// positional: there is no cross-year identity and no deduplication, an
// applicant who applies twice is two records.
type ApplicantRecord struct {
	Source           SourcePopulation `json:"source"`
	ReportingYear    int              `json:"reporting_year"`
	Season           Season           `json:"season"`
	ProgramRaw       string           `json:"program_raw"`
	Program          string           `json:"program"`
	School           string           `json:"school"`
	DegreeType       string           `json:"degree_type"`
	SponsoringCompany string          `json:"sponsoring_company,omitempty"`
	Category         Category         `json:"category"`

	// IsCountedApplication is always true for primary rows; secondary rows
	// only count when their decision field is non-blank.
	IsCountedApplication bool        `json:"is_counted_application"`
	AdmitStatus          AdmitStatus `json:"admit_status"`
	OfferAccepted        bool        `json:"offer_accepted"`
	OfferDeclined        bool        `json:"offer_declined"`
	Enrolled             bool        `json:"enrolled"`
}
