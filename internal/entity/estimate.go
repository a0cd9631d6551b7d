package entity

import (
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
)

// EstimateItem is one priced line. Assembly fields are copied at creation so
// later catalog edits do not alter saved estimates.
type EstimateItem struct {
	ItemID       string               `json:"itemId"`
	AssemblyID   string               `json:"assemblyId"`
	AssemblyCode string               `json:"assemblyCode"`
	AssemblyName string               `json:"assemblyName"`
	DeviceType   constants.DeviceType `json:"deviceType"`
	Quantity     int                  `json:"quantity"`
	LaborHours   float64              `json:"laborHours"`
	MaterialCost float64              `json:"materialCost"`
	TotalCost    float64              `json:"totalCost"`
	Phase        constants.Phase      `json:"phase"`
	Notes        string               `json:"notes,omitempty"`
}

type EstimateRoom struct {
	RoomID string         `json:"roomId"`
	Name   string         `json:"name"`
	Floor  int            `json:"floor"`
	Items  []EstimateItem `json:"items"`
}

// EstimatePhase aggregates every item whose phase matches.
type EstimatePhase struct {
	PhaseID      string          `json:"phaseId"`
	Phase        constants.Phase `json:"phase"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	LaborHours   float64         `json:"laborHours"`
	MaterialCost float64         `json:"materialCost"`
	TotalCost    float64         `json:"totalCost"`
}

// Financials is the estimate's cost roll-up.
type Financials struct {
	LaborRate          float64 `json:"laborRate"`
	TotalLaborHours    float64 `json:"totalLaborHours"`
	TotalLaborCost     float64 `json:"totalLaborCost"`
	TotalMaterialCost  float64 `json:"totalMaterialCost"`
	Subtotal           float64 `json:"subtotal"`
	OverheadPercentage float64 `json:"overheadPercentage"`
	OverheadAmount     float64 `json:"overheadAmount"`
	ProfitPercentage   float64 `json:"profitPercentage"`
	ProfitAmount       float64 `json:"profitAmount"`
	TotalCost          float64 `json:"totalCost"`
}

// Pricing returns the rules the financials were computed with.
func (f Financials) Pricing() PricingRules {
	return PricingRules{
		HourlyRate:         f.LaborRate,
		OverheadPercentage: f.OverheadPercentage,
		ProfitPercentage:   f.ProfitPercentage,
	}
}

type Estimate struct {
	EstimateID        string                   `json:"estimateId"`
	ProjectID         string                   `json:"projectId"`
	BlueprintID       string                   `json:"blueprintId,omitempty"`
	CompanyID         string                   `json:"companyId"`
	Status            constants.EstimateStatus `json:"status"`
	Version           int                      `json:"version"`
	Revised           bool                     `json:"revised"`
	PreviousVersionID string                   `json:"previousVersionId,omitempty"`
	Rooms             []EstimateRoom           `json:"rooms"`
	Phases            []EstimatePhase          `json:"phases"`
	Financials        Financials               `json:"financials"`
	Notes             string                   `json:"notes,omitempty"`
	SentDate          *time.Time               `json:"sentDate,omitempty"`
	AcceptedDate      *time.Time               `json:"acceptedDate,omitempty"`
	RejectedDate      *time.Time               `json:"rejectedDate,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
	CreatedBy         string                   `json:"createdBy"`
	UpdatedBy         string                   `json:"updatedBy"`
}

// Phase returns the estimate phase for p, or nil.
func (e *Estimate) Phase(p constants.Phase) *EstimatePhase {
	for i := range e.Phases {
		if e.Phases[i].Phase == p {
			return &e.Phases[i]
		}
	}
	return nil
}

// EstimatePatch is a partial update of a draft estimate. Nil fields are left
// unchanged; a non-nil Rooms replaces the room list.
type EstimatePatch struct {
	Rooms              []EstimateRoom `json:"rooms,omitempty"`
	LaborRate          *float64       `json:"laborRate,omitempty"`
	OverheadPercentage *float64       `json:"overheadPercentage,omitempty"`
	ProfitPercentage   *float64       `json:"profitPercentage,omitempty"`
	Notes              *string        `json:"notes,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p EstimatePatch) Empty() bool {
	return p.Rooms == nil && p.LaborRate == nil && p.OverheadPercentage == nil &&
		p.ProfitPercentage == nil && p.Notes == nil
}

// Repriced reports whether the patch requires the roll-up to be recomputed.
func (p EstimatePatch) Repriced() bool {
	return p.Rooms != nil || p.LaborRate != nil || p.OverheadPercentage != nil || p.ProfitPercentage != nil
}
