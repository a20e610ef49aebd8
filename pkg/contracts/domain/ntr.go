package domain

// NTRSummary is the top-level net tuition revenue result for one semester.
type NTRSummary struct {
	TotalNTR         float64 `json:"total_ntr"`
	Goal             float64 `json:"goal"`
	PercentOfGoal    float64 `json:"percent_of_goal"`
	GapToGoal        float64 `json:"gap_to_goal"`
	TotalStudents    int     `json:"total_students"`
	TotalCredits     float64 `json:"total_credits"`
	NewStudents      int     `json:"new_students"`
	CurrentStudents  int     `json:"current_students"`
	NewCredits       float64 `json:"new_credits"`
	CurrentCredits   float64 `json:"current_credits"`
	NewNTR           float64 `json:"new_ntr"`
	CurrentNTR       float64 `json:"current_ntr"`

	// RateGaps lists every (category, degree, student type) combination
	// observed in the census but missing from the rate table. Each such
	// group contributed exactly 0 revenue; without this list the
	// undercount would be invisible in the total.
	RateGaps []RateGap `json:"rate_gaps,omitempty"`
}

// RateGap identifies a rate-table key observed in data but not priced.
type RateGap struct {
	Category    Category    `json:"category"`
	DegreeType  string      `json:"degree_type"`
	StudentType StudentType `json:"student_type"`
	Students    int         `json:"students"`
	Credits     float64     `json:"credits"`
}

// CategoryNTR is the revenue breakdown for one (category, degree) group.
type CategoryNTR struct {
	Category        Category `json:"category"`
	DegreeType      string   `json:"degree_type"`
	NewStudents     int      `json:"new_students"`
	CurrentStudents int      `json:"current_students"`
	TotalStudents   int      `json:"total_students"`
	NewCredits      float64  `json:"new_credits"`
	CurrentCredits  float64  `json:"current_credits"`
	TotalCredits    float64  `json:"total_credits"`
	RateNew         float64  `json:"rate_new"`
	RateCurrent     float64  `json:"rate_current"`
	NTRNew          float64  `json:"ntr_new"`
	NTRCurrent      float64  `json:"ntr_current"`
	TotalNTR        float64  `json:"total_ntr"`
}

// ProgramNTR is the revenue contribution of a single program.
type ProgramNTR struct {
	Program  string  `json:"program"`
	Students int     `json:"students"`
	Credits  float64 `json:"credits"`
	NTR      float64 `json:"ntr"`
}

// RateEntry is one published cost-per-credit line, used by reporting
// surfaces that need to explain an NTR figure.
type RateEntry struct {
	Category    Category `json:"category"`
	DegreeType  string   `json:"degree_type"`
	RateNew     float64  `json:"rate_new"`
	RateCurrent float64  `json:"rate_current"`
	Notes       string   `json:"notes,omitempty"`
}
