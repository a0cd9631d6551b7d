package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/timeline"
)

type timelineBody struct {
	StartDate string `json:"startDate"`
	CrewSize  int    `json:"crewSize"`
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, common.InvalidInput(fmt.Sprintf("invalid date %q: want YYYY-MM-DD", s))
	}
	return t, nil
}

// predictTimeline handles POST /projects/{projectId}/estimates/{estimateId}/timeline.
// The body is optional; omitted values use the predictor defaults.
func (h *handler) predictTimeline(w http.ResponseWriter, r *http.Request) {
	var body timelineBody
	if err := decodeOptional(w, r, nil, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	start, err := parseDate(body.StartDate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tl, err := h.Timeline.Predict(r.Context(), timeline.Request{
		ProjectID:  chi.URLParam(r, "projectId"),
		EstimateID: chi.URLParam(r, "estimateId"),
		StartDate:  start,
		CrewSize:   body.CrewSize,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

// recordHistory handles POST /companies/{companyId}/history.
func (h *handler) recordHistory(w http.ResponseWriter, r *http.Request) {
	var hp entity.HistoricalProject
	if err := decode(w, r, nil, &hp); err != nil {
		h.writeError(w, r, err)
		return
	}
	hp.CompanyID = chi.URLParam(r, "companyId")
	saved, err := h.Timeline.RecordHistory(r.Context(), hp)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}
