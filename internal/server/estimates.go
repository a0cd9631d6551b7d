package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/estimate"
	"github.com/joseph-ayodele/blueprint-estimator/internal/schema"
)

type generateEstimateBody struct {
	BlueprintID string `json:"blueprintId"`
	CompanyID   string `json:"companyId"`
}

type createEstimateBody struct {
	CompanyID   string                `json:"companyId"`
	BlueprintID string                `json:"blueprintId"`
	Rooms       []entity.EstimateRoom `json:"rooms"`
	Notes       string                `json:"notes"`
}

type statusBody struct {
	Status string `json:"status"`
}

// generateEstimate handles POST /projects/{projectId}/estimates.
func (h *handler) generateEstimate(w http.ResponseWriter, r *http.Request) {
	var body generateEstimateBody
	if err := decode(w, r, nil, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	est, err := h.Engine.Generate(r.Context(), estimate.GenerateRequest{
		ProjectID:   chi.URLParam(r, "projectId"),
		BlueprintID: body.BlueprintID,
		CompanyID:   body.CompanyID,
		UserID:      userID(r),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, est)
}

// createEstimate handles POST /projects/{projectId}/estimates/manual.
func (h *handler) createEstimate(w http.ResponseWriter, r *http.Request) {
	var body createEstimateBody
	if err := decode(w, r, schema.EstimateRooms, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	est, err := h.Estimates.Create(r.Context(), estimate.CreateRequest{
		ProjectID:   chi.URLParam(r, "projectId"),
		CompanyID:   body.CompanyID,
		BlueprintID: body.BlueprintID,
		Rooms:       body.Rooms,
		Notes:       body.Notes,
		UserID:      userID(r),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, est)
}

func (h *handler) listEstimates(w http.ResponseWriter, r *http.Request) {
	list, err := h.Estimates.List(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"estimates": list})
}

func (h *handler) getEstimate(w http.ResponseWriter, r *http.Request) {
	est, err := h.Estimates.Get(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "estimateId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// updateEstimate handles PATCH /projects/{projectId}/estimates/{estimateId}.
func (h *handler) updateEstimate(w http.ResponseWriter, r *http.Request) {
	var patch entity.EstimatePatch
	if err := decode(w, r, schema.EstimatePatch, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	est, err := h.Estimates.Update(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "estimateId"), patch, userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// updateEstimateStatus handles PUT /projects/{projectId}/estimates/{estimateId}/status.
func (h *handler) updateEstimateStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decode(w, r, schema.EstimateStatus, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	est, err := h.Estimates.UpdateStatus(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "estimateId"), body.Status, userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// reviseEstimate handles POST /projects/{projectId}/estimates/{estimateId}/revisions.
func (h *handler) reviseEstimate(w http.ResponseWriter, r *http.Request) {
	est, err := h.Estimates.Revise(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "estimateId"), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, est)
}
