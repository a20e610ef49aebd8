package domain

// StudentStatus is the raw enrollment status carried on a census row.
type StudentStatus string

const (
	StatusNew        StudentStatus = "New"
	StatusContinuing StudentStatus = "Continuing"
	StatusReturning  StudentStatus = "Returning"
)

// StudentType is the billing classification derived from StudentStatus.
// Current covers continuing and returning students plus New-status students
// who were already enrolled in the prior summer term; those carried-over
// students must not be billed (or counted) as new a second time.
type StudentType string

const (
	TypeNew     StudentType = "New"
	TypeCurrent StudentType = "Current"
)

// CensusStudentRecord is one row of the point-in-time census snapshot.
// Student IDs are not unique per row: the same student can appear multiple
// times with different attributes, so headcounts are always unique-ID
// counts, never row counts.
type CensusStudentRecord struct {
	StudentID        string        `json:"student_id"`
	Semester         string        `json:"semester"`
	LocationDetailed string        `json:"location_detailed"`
	DegreeType       string        `json:"degree_type"`
	CorporateFlag    string        `json:"corporate_flag"`
	CorporateCohort  string        `json:"corporate_cohort"`
	BeaconFlag       int           `json:"beacon_flag"`
	Status           StudentStatus `json:"status"`
	PriorSummerAsNew bool          `json:"prior_summer_as_new"`
	Credits          float64       `json:"credits"`
	Program          string        `json:"program"`
	School           string        `json:"school"`

	// Derived by the census categorizer.
	Category Category    `json:"category"`
	Type     StudentType `json:"type"`
}

// CensusStatusCounts holds unique-student headcounts per raw status, the
// aggregate the reconciliation layer consumes. New is reported for
// visibility but is never added into a reconciled total.
type CensusStatusCounts struct {
	New        int `json:"new"`
	Continuing int `json:"continuing"`
	Returning  int `json:"returning"`
	Total      int `json:"total"`
}
