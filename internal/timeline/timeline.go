// Package timeline predicts installation schedules from estimates and the
// company's completed projects.
package timeline

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

const (
	DefaultCrewSize     = 2
	HoursPerDay         = 8.0
	SimilarityThreshold = 0.7
	maxMatches          = 3

	syntheticConfidence = 0.4
)

type EstimateReader interface {
	Get(ctx context.Context, projectID, estimateID string) (*entity.Estimate, error)
}

type BlueprintReader interface {
	Get(ctx context.Context, projectID, blueprintID string) (*entity.Blueprint, error)
}

type HistoryStore interface {
	Put(ctx context.Context, h *entity.HistoricalProject) error
	List(ctx context.Context, companyID string) ([]entity.HistoricalProject, error)
}

// Request asks for a schedule for one estimate. A zero StartDate means the
// next working day; a zero CrewSize means DefaultCrewSize.
type Request struct {
	ProjectID  string
	EstimateID string
	StartDate  time.Time
	CrewSize   int
}

type Predictor struct {
	estimates  EstimateReader
	blueprints BlueprintReader
	history    HistoryStore
	log        *slog.Logger
	now        func() time.Time
}

func NewPredictor(estimates EstimateReader, blueprints BlueprintReader, history HistoryStore, logger *slog.Logger) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Predictor{
		estimates:  estimates,
		blueprints: blueprints,
		history:    history,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Predict schedules the estimate's phases. Durations come from similar
// completed projects when any score above SimilarityThreshold, otherwise from
// phase labor hours spread over the crew.
func (p *Predictor) Predict(ctx context.Context, req Request) (*entity.Timeline, error) {
	v := common.NewValidator().
		Field("projectId", req.ProjectID, common.Required).
		Field("estimateId", req.EstimateID, common.Required).
		Field("crewSize", req.CrewSize, common.NonNegative)
	if err := common.ValidateInput(v); err != nil {
		return nil, err
	}
	crew := req.CrewSize
	if crew == 0 {
		crew = DefaultCrewSize
	}
	start := req.StartDate
	if start.IsZero() {
		start = addWorkingDays(onOrAfterWorkingDay(p.now()), 1)
	}

	est, err := p.estimates.Get(ctx, req.ProjectID, req.EstimateID)
	if err != nil {
		return nil, err
	}
	profile, err := p.profile(ctx, est)
	if err != nil {
		return nil, err
	}
	history, err := p.history.List(ctx, est.CompanyID)
	if err != nil {
		return nil, err
	}

	tl := &entity.Timeline{
		ProjectID:  req.ProjectID,
		EstimateID: req.EstimateID,
		CrewSize:   crew,
	}
	var days map[constants.Phase]int
	if matches := rankSimilar(profile, history, SimilarityThreshold, maxMatches); len(matches) > 0 {
		days = historicalDays(est, matches)
		tl.Basis = entity.TimelineBasisHistorical
		tl.Confidence = historicalConfidence(matches)
		for _, m := range matches {
			tl.SimilarProjects = append(tl.SimilarProjects, entity.SimilarProject{ProjectID: m.project.ProjectID, Score: m.score})
		}
	} else {
		days = syntheticDays(est, crew)
		tl.Basis = entity.TimelineBasisSynthetic
		tl.Confidence = syntheticConfidence
	}
	schedule(tl, est, days, start)

	p.log.Info("timeline.predict.ok",
		"project_id", req.ProjectID,
		"estimate_id", req.EstimateID,
		"basis", tl.Basis,
		"working_days", tl.TotalWorkingDays,
	)
	return tl, nil
}

// profile sizes the estimate, using its blueprint when there is one.
func (p *Predictor) profile(ctx context.Context, est *entity.Estimate) (Profile, error) {
	prof := Profile{LaborHours: est.Financials.TotalLaborHours}
	if est.BlueprintID == "" {
		return prof, nil
	}
	bp, err := p.blueprints.Get(ctx, est.ProjectID, est.BlueprintID)
	if errors.Is(err, common.ErrNotFound) {
		p.log.Warn("timeline.blueprint.missing", "estimate_id", est.EstimateID, "blueprint_id", est.BlueprintID)
		return prof, nil
	}
	if err != nil {
		return prof, err
	}
	prof.SquareFootage = bp.SquareFootage
	prof.Floors = bp.Floors
	return prof, nil
}

// syntheticDays spreads each phase's labor over crew × HoursPerDay. A phase
// always takes at least one day.
func syntheticDays(est *entity.Estimate, crew int) map[constants.Phase]int {
	out := make(map[constants.Phase]int, len(constants.EstimatePhases))
	perDay := float64(crew) * HoursPerDay
	for _, info := range constants.EstimatePhases {
		var hours float64
		if ph := est.Phase(info.Phase); ph != nil {
			hours = ph.LaborHours
		}
		out[info.Phase] = max(1, int(math.Ceil(hours/perDay)))
	}
	return out
}

// historicalDays averages the matches' phase durations weighted by score,
// each scaled by the ratio of this estimate's labor to the match's.
func historicalDays(est *entity.Estimate, matches []match) map[constants.Phase]int {
	out := make(map[constants.Phase]int, len(constants.EstimatePhases))
	for _, info := range constants.EstimatePhases {
		var sum, weight float64
		for _, m := range matches {
			d := float64(m.project.PhaseDays.Get(info.Phase))
			if m.project.LaborHours > 0 && est.Financials.TotalLaborHours > 0 {
				d *= est.Financials.TotalLaborHours / m.project.LaborHours
			}
			sum += d * m.score
			weight += m.score
		}
		out[info.Phase] = max(1, int(math.Round(sum/weight)))
	}
	return out
}

func historicalConfidence(matches []match) float64 {
	var total float64
	for _, m := range matches {
		total += m.score
	}
	avg := total / float64(len(matches))
	coverage := math.Min(1, float64(len(matches))/maxMatches)
	return math.Min(0.95, 0.5+0.5*avg*coverage)
}

// schedule lays the phases out back to back on working days. The rough
// inspection takes the day after rough-in; the final inspection the day
// after the last phase.
func schedule(tl *entity.Timeline, est *entity.Estimate, days map[constants.Phase]int, start time.Time) {
	cursor := onOrAfterWorkingDay(start)
	tl.StartDate = cursor
	tl.Phases = tl.Phases[:0]
	tl.Inspections = tl.Inspections[:0]

	for i, info := range constants.EstimatePhases {
		n := days[info.Phase]
		end := addWorkingDays(cursor, n-1)
		var hours float64
		if ph := est.Phase(info.Phase); ph != nil {
			hours = ph.LaborHours
		}
		tl.Phases = append(tl.Phases, entity.PhaseWindow{
			Phase:       info.Phase,
			Name:        info.Name,
			StartDate:   cursor,
			EndDate:     end,
			WorkingDays: n,
			LaborHours:  hours,
		})
		cursor = addWorkingDays(end, 1)

		if info.Phase == constants.PhaseRough {
			tl.Inspections = append(tl.Inspections, entity.Milestone{Name: "Rough inspection", Phase: info.Phase, Date: cursor})
			cursor = addWorkingDays(cursor, 1)
		}
		if i == len(constants.EstimatePhases)-1 {
			tl.Inspections = append(tl.Inspections, entity.Milestone{Name: "Final inspection", Phase: info.Phase, Date: cursor})
			tl.EndDate = cursor
		}
	}
	tl.TotalWorkingDays = workingDaysBetween(tl.StartDate, tl.EndDate)
}

// RecordHistory stores a completed project's actuals for later predictions.
func (p *Predictor) RecordHistory(ctx context.Context, h entity.HistoricalProject) (*entity.HistoricalProject, error) {
	v := common.NewValidator().
		Field("companyId", h.CompanyID, common.Required).
		Field("projectId", h.ProjectID, common.Required).
		Field("squareFootage", h.SquareFootage, common.NonNegative).
		Field("floors", h.Floors, common.NonNegative).
		Field("laborHours", h.LaborHours, common.NonNegative).
		Field("phaseDays.rough", h.PhaseDays.Rough, common.NonNegative).
		Field("phaseDays.trim", h.PhaseDays.Trim, common.NonNegative).
		Field("phaseDays.service", h.PhaseDays.Service, common.NonNegative)
	if err := common.ValidateInput(v); err != nil {
		return nil, err
	}
	if h.CompletedAt.IsZero() {
		h.CompletedAt = p.now()
	}
	if err := p.history.Put(ctx, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
