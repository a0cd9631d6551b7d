package estimate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// Service handles reads and edits of existing estimates plus manual creation.
type Service struct {
	estimates EstimateStore
	companies CompanyReader
	log       *slog.Logger
	opts      options
}

func NewService(estimates EstimateStore, companies CompanyReader, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{estimates: estimates, companies: companies, log: logger, opts: o}
}

func (s *Service) Get(ctx context.Context, projectID, estimateID string) (*entity.Estimate, error) {
	return s.estimates.Get(ctx, projectID, estimateID)
}

// List returns the project's estimates ordered by version.
func (s *Service) List(ctx context.Context, projectID string) ([]entity.Estimate, error) {
	if err := common.ValidateInput(common.NewValidator().Field("projectId", projectID, common.Required)); err != nil {
		return nil, err
	}
	return s.estimates.List(ctx, projectID)
}

// Update applies patch to a draft estimate. Any pricing or room change
// recomputes the phases and financials.
func (s *Service) Update(ctx context.Context, projectID, estimateID string, patch entity.EstimatePatch, userID string) (*entity.Estimate, error) {
	if patch.Empty() {
		return nil, common.InvalidInput("update has no fields")
	}
	if err := validateRooms(patch.Rooms); err != nil {
		return nil, err
	}

	est, err := s.estimates.Get(ctx, projectID, estimateID)
	if err != nil {
		return nil, err
	}
	if est.Status != constants.EstimateStatusDraft {
		s.log.Warn("estimate.update.rejected", "estimate_id", estimateID, "status", est.Status)
		return nil, common.Validationf("estimate %s is %s; only draft estimates can be updated", estimateID, est.Status)
	}

	if patch.Notes != nil {
		est.Notes = *patch.Notes
	}
	if patch.Repriced() {
		pricing := est.Financials.Pricing()
		if patch.LaborRate != nil {
			pricing.HourlyRate = *patch.LaborRate
		}
		if patch.OverheadPercentage != nil {
			pricing.OverheadPercentage = *patch.OverheadPercentage
		}
		if patch.ProfitPercentage != nil {
			pricing.ProfitPercentage = *patch.ProfitPercentage
		}
		if patch.Rooms != nil {
			est.Rooms = s.normalizeRooms(patch.Rooms)
		}
		Rollup(est, pricing, s.opts.newID)
	}
	est.Revised = true
	est.UpdatedAt = s.opts.now()
	est.UpdatedBy = userID

	if err := s.estimates.Put(ctx, est); err != nil {
		return nil, err
	}
	s.log.Info("estimate.update.ok", "project_id", projectID, "estimate_id", estimateID, "total_cost", est.Financials.TotalCost)
	return est, nil
}

// UpdateStatus moves an estimate to status. Rejected estimates are final, and
// an estimate that left draft can only return to draft through Revise.
func (s *Service) UpdateStatus(ctx context.Context, projectID, estimateID, status, userID string) (*entity.Estimate, error) {
	next, ok := constants.ParseEstimateStatus(status)
	if !ok {
		return nil, common.InvalidInput(fmt.Sprintf("unknown estimate status %q", status))
	}

	est, err := s.estimates.Get(ctx, projectID, estimateID)
	if err != nil {
		return nil, err
	}
	if est.Status == next {
		return est, nil
	}
	if est.Status.IsTerminal() {
		return nil, common.Validationf("estimate %s is %s and cannot change status", estimateID, est.Status)
	}
	if next == constants.EstimateStatusDraft {
		return nil, common.Validationf("estimate %s is %s; revise it to start a new draft", estimateID, est.Status)
	}

	now := s.opts.now()
	switch next {
	case constants.EstimateStatusSent:
		est.SentDate = &now
	case constants.EstimateStatusAccepted:
		est.AcceptedDate = &now
	case constants.EstimateStatusRejected:
		est.RejectedDate = &now
	}
	prev := est.Status
	est.Status = next
	est.UpdatedAt = now
	est.UpdatedBy = userID

	if err := s.estimates.Put(ctx, est); err != nil {
		return nil, err
	}
	s.log.Info("estimate.status.ok", "project_id", projectID, "estimate_id", estimateID, "from", prev, "to", next)
	return est, nil
}

// CreateRequest is a manually authored estimate.
type CreateRequest struct {
	ProjectID   string
	CompanyID   string
	BlueprintID string
	Rooms       []entity.EstimateRoom
	Notes       string
	UserID      string
}

// Create stores a client-authored estimate as the project's next version.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*entity.Estimate, error) {
	v := common.NewValidator().
		Field("projectId", req.ProjectID, common.Required).
		Field("companyId", req.CompanyID, common.Required)
	if err := common.ValidateInput(v); err != nil {
		return nil, err
	}
	if err := validateRooms(req.Rooms); err != nil {
		return nil, err
	}

	company, err := s.companies.Get(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	latest, err := s.estimates.LatestVersion(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	est := &entity.Estimate{
		EstimateID:  s.opts.newID(),
		ProjectID:   req.ProjectID,
		BlueprintID: req.BlueprintID,
		CompanyID:   req.CompanyID,
		Status:      constants.EstimateStatusDraft,
		Version:     latest + 1,
		Rooms:       s.normalizeRooms(req.Rooms),
		Notes:       req.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   req.UserID,
		UpdatedBy:   req.UserID,
	}
	Rollup(est, company.Resolved(), s.opts.newID)

	if err := s.estimates.Create(ctx, est); err != nil {
		return nil, err
	}
	s.log.Info("estimate.create.ok", "project_id", req.ProjectID, "estimate_id", est.EstimateID, "version", est.Version)
	return est, nil
}

// Revise starts a new draft version from an estimate that has left draft.
func (s *Service) Revise(ctx context.Context, projectID, estimateID, userID string) (*entity.Estimate, error) {
	src, err := s.estimates.Get(ctx, projectID, estimateID)
	if err != nil {
		return nil, err
	}
	switch {
	case src.Status == constants.EstimateStatusDraft:
		return nil, common.Validationf("estimate %s is still a draft; update it instead", estimateID)
	case src.Status.IsTerminal():
		return nil, common.Validationf("estimate %s is %s and cannot be revised", estimateID, src.Status)
	}

	latest, err := s.estimates.LatestVersion(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	est := &entity.Estimate{
		EstimateID:        s.opts.newID(),
		ProjectID:         projectID,
		BlueprintID:       src.BlueprintID,
		CompanyID:         src.CompanyID,
		Status:            constants.EstimateStatusDraft,
		Version:           latest + 1,
		Revised:           true,
		PreviousVersionID: src.EstimateID,
		Rooms:             cloneRooms(src.Rooms),
		Notes:             src.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
		CreatedBy:         userID,
		UpdatedBy:         userID,
	}
	Rollup(est, src.Financials.Pricing(), s.opts.newID)

	if err := s.estimates.Create(ctx, est); err != nil {
		return nil, err
	}
	s.log.Info("estimate.revise.ok", "project_id", projectID, "from", src.EstimateID, "estimate_id", est.EstimateID, "version", est.Version)
	return est, nil
}

// normalizeRooms copies rooms, filling in missing ids and floors.
func (s *Service) normalizeRooms(rooms []entity.EstimateRoom) []entity.EstimateRoom {
	out := cloneRooms(rooms)
	for r := range out {
		if out[r].RoomID == "" {
			out[r].RoomID = s.opts.newID()
		}
		if out[r].Floor < 1 {
			out[r].Floor = 1
		}
		for i := range out[r].Items {
			if out[r].Items[i].ItemID == "" {
				out[r].Items[i].ItemID = s.opts.newID()
			}
		}
	}
	return out
}

func cloneRooms(rooms []entity.EstimateRoom) []entity.EstimateRoom {
	out := make([]entity.EstimateRoom, len(rooms))
	for i, r := range rooms {
		out[i] = r
		out[i].Items = append([]entity.EstimateItem(nil), r.Items...)
	}
	return out
}

func validateRooms(rooms []entity.EstimateRoom) error {
	v := common.NewValidator()
	for r, room := range rooms {
		v.Field(fmt.Sprintf("rooms[%d].name", r), room.Name, common.Required)
		for i, it := range room.Items {
			prefix := fmt.Sprintf("rooms[%d].items[%d]", r, i)
			v.Field(prefix+".quantity", it.Quantity, common.NonNegative).
				Field(prefix+".laborHours", it.LaborHours, common.NonNegative).
				Field(prefix+".materialCost", it.MaterialCost, common.NonNegative)
		}
	}
	return common.ValidateInput(v)
}
