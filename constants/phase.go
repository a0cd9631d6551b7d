package constants

import "strings"

// Phase is the construction stage an assembly's cost is bucketed into.
type Phase string

const (
	PhaseRough   Phase = "rough"
	PhaseTrim    Phase = "trim"
	PhaseService Phase = "service"
)

// PhaseInfo holds the fixed display data of an estimate phase.
type PhaseInfo struct {
	Phase       Phase
	Name        string
	Description string
}

// EstimatePhases is the fixed, ordered set of phases every estimate carries.
var EstimatePhases = []PhaseInfo{
	{Phase: PhaseRough, Name: "Rough", Description: "Boxes, cable runs and home runs before wall cover"},
	{Phase: PhaseTrim, Name: "Trim", Description: "Devices, fixtures and covers after wall finish"},
	{Phase: PhaseService, Name: "Service", Description: "Service entrance, panel and final connections"},
}

// ParsePhase normalizes a stored phase label. Unknown labels return false.
func ParsePhase(s string) (Phase, bool) {
	switch Phase(strings.ToLower(strings.TrimSpace(s))) {
	case PhaseRough:
		return PhaseRough, true
	case PhaseTrim:
		return PhaseTrim, true
	case PhaseService:
		return PhaseService, true
	}
	return Phase(s), false
}
