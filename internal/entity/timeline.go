package entity

import (
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
)

// PhaseDays holds working-day durations per estimate phase.
type PhaseDays struct {
	Rough   int `json:"rough"`
	Trim    int `json:"trim"`
	Service int `json:"service"`
}

// Get returns the duration for p, 0 for an unknown phase.
func (d PhaseDays) Get(p constants.Phase) int {
	switch p {
	case constants.PhaseRough:
		return d.Rough
	case constants.PhaseTrim:
		return d.Trim
	case constants.PhaseService:
		return d.Service
	}
	return 0
}

// HistoricalProject records the actuals of a completed project, used to
// calibrate timeline predictions.
type HistoricalProject struct {
	CompanyID     string    `json:"companyId"`
	ProjectID     string    `json:"projectId"`
	Name          string    `json:"name,omitempty"`
	SquareFootage float64   `json:"squareFootage"`
	Floors        int       `json:"floors"`
	LaborHours    float64   `json:"laborHours"`
	PhaseDays     PhaseDays `json:"phaseDays"`
	CompletedAt   time.Time `json:"completedAt"`
}

// SimilarProject is a historical project and its similarity score in [0,1].
type SimilarProject struct {
	ProjectID string  `json:"projectId"`
	Score     float64 `json:"score"`
}

// PhaseWindow is the scheduled span of one phase, inclusive of both dates.
type PhaseWindow struct {
	Phase       constants.Phase `json:"phase"`
	Name        string          `json:"name"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	WorkingDays int             `json:"workingDays"`
	LaborHours  float64         `json:"laborHours"`
}

// Milestone is a dated checkpoint such as an inspection.
type Milestone struct {
	Name  string          `json:"name"`
	Phase constants.Phase `json:"phase"`
	Date  time.Time       `json:"date"`
}

// Timeline basis values.
const (
	TimelineBasisHistorical = "historical"
	TimelineBasisSynthetic  = "synthetic"
)

// Timeline is a predicted schedule for an estimate.
type Timeline struct {
	ProjectID        string           `json:"projectId"`
	EstimateID       string           `json:"estimateId"`
	CrewSize         int              `json:"crewSize"`
	StartDate        time.Time        `json:"startDate"`
	EndDate          time.Time        `json:"endDate"`
	TotalWorkingDays int              `json:"totalWorkingDays"`
	Phases           []PhaseWindow    `json:"phases"`
	Inspections      []Milestone      `json:"inspections"`
	Basis            string           `json:"basis"`
	Confidence       float64          `json:"confidence"`
	SimilarProjects  []SimilarProject `json:"similarProjects,omitempty"`
}
