package estimate

import (
	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// ItemTotal is the line total for laborHours at rate plus materials.
func ItemTotal(laborHours, materialCost, rate float64) float64 {
	return laborHours*rate + materialCost
}

// Reprice recomputes every item's TotalCost at rate.
func Reprice(rooms []entity.EstimateRoom, rate float64) {
	for r := range rooms {
		for i := range rooms[r].Items {
			it := &rooms[r].Items[i]
			it.TotalCost = ItemTotal(it.LaborHours, it.MaterialCost, rate)
		}
	}
}

// ComputePhases buckets items into the fixed Rough, Trim and Service phases.
// Items whose phase is none of these stay in their room but are not counted.
func ComputePhases(rooms []entity.EstimateRoom, newID func() string) []entity.EstimatePhase {
	phases := make([]entity.EstimatePhase, len(constants.EstimatePhases))
	index := make(map[constants.Phase]int, len(constants.EstimatePhases))
	for i, info := range constants.EstimatePhases {
		phases[i] = entity.EstimatePhase{
			PhaseID:     newID(),
			Phase:       info.Phase,
			Name:        info.Name,
			Description: info.Description,
		}
		index[info.Phase] = i
	}

	for _, room := range rooms {
		for _, it := range room.Items {
			i, ok := index[it.Phase]
			if !ok {
				continue
			}
			phases[i].LaborHours += it.LaborHours
			phases[i].MaterialCost += it.MaterialCost
			phases[i].TotalCost += it.TotalCost
		}
	}
	return phases
}

// ComputeFinancials rolls the phase totals up with the given pricing.
//
//	subtotal = materials + labor hours * rate
//	overhead = subtotal * overhead% / 100
//	profit   = (subtotal + overhead) * profit% / 100
//	total    = subtotal + overhead + profit
func ComputeFinancials(phases []entity.EstimatePhase, pricing entity.PricingRules) entity.Financials {
	f := entity.Financials{
		LaborRate:          pricing.HourlyRate,
		OverheadPercentage: pricing.OverheadPercentage,
		ProfitPercentage:   pricing.ProfitPercentage,
	}
	for _, p := range phases {
		f.TotalLaborHours += p.LaborHours
		f.TotalMaterialCost += p.MaterialCost
	}
	f.TotalLaborCost = f.TotalLaborHours * pricing.HourlyRate
	f.Subtotal = f.TotalMaterialCost + f.TotalLaborCost
	f.OverheadAmount = f.Subtotal * pricing.OverheadPercentage / 100
	f.ProfitAmount = (f.Subtotal + f.OverheadAmount) * pricing.ProfitPercentage / 100
	f.TotalCost = f.Subtotal + f.OverheadAmount + f.ProfitAmount
	return f
}

// Rollup reprices e's items and recomputes its phases and financials.
func Rollup(e *entity.Estimate, pricing entity.PricingRules, newID func() string) {
	Reprice(e.Rooms, pricing.HourlyRate)
	e.Phases = ComputePhases(e.Rooms, newID)
	e.Financials = ComputeFinancials(e.Phases, pricing)
}
