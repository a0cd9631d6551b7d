package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/blueprint-estimator/constants"
	"github.com/joseph-ayodele/blueprint-estimator/internal/async"
	"github.com/joseph-ayodele/blueprint-estimator/internal/blueprint"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

type processBlueprintBody struct {
	FileKey    string  `json:"fileKey"`
	TemplateID *string `json:"templateId,omitempty"`
}

type acceptedResponse struct {
	ProjectID string                    `json:"projectId"`
	FileKey   string                    `json:"fileKey"`
	Status    constants.BlueprintStatus `json:"status"`
}

// processBlueprint handles POST /projects/{projectId}/blueprints. With
// ?async=true the run is queued and the response is 202; the project's
// blueprint status reports the outcome.
func (h *handler) processBlueprint(w http.ResponseWriter, r *http.Request) {
	var body processBlueprintBody
	if err := decode(w, r, nil, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	if body.TemplateID != nil && strings.TrimSpace(*body.TemplateID) == "" {
		body.TemplateID = nil
	}
	projectID := chi.URLParam(r, "projectId")

	runAsync, _ := strconv.ParseBool(r.URL.Query().Get("async"))
	if !runAsync {
		bp, err := h.Processor.ProcessBlueprint(r.Context(), blueprint.Request{
			ProjectID:  projectID,
			FileKey:    body.FileKey,
			TemplateID: body.TemplateID,
			UserID:     userID(r),
		})
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, bp)
		return
	}

	if h.Queue == nil {
		h.writeError(w, r, async.ErrQueueClosed)
		return
	}
	if strings.TrimSpace(body.FileKey) == "" {
		h.writeError(w, r, common.InvalidInput("fileKey is required"))
		return
	}
	// the project must exist before a worker picks the job up
	if _, err := h.Projects.GetProject(r.Context(), projectID); err != nil {
		h.writeError(w, r, err)
		return
	}
	err := h.Queue.Enqueue(r.Context(), async.Job{
		ProjectID:   projectID,
		FileKey:     body.FileKey,
		TemplateID:  body.TemplateID,
		UserID:      userID(r),
		SubmittedAt: time.Now().UTC(),
		RequestID:   common.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedResponse{
		ProjectID: projectID,
		FileKey:   body.FileKey,
		Status:    constants.BlueprintStatusProcessing,
	})
}

func (h *handler) listBlueprints(w http.ResponseWriter, r *http.Request) {
	list, err := h.Projects.ListBlueprints(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"blueprints": list})
}

func (h *handler) getBlueprint(w http.ResponseWriter, r *http.Request) {
	bp, err := h.Projects.GetBlueprint(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "blueprintId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bp)
}

// derivePermit handles GET /projects/{projectId}/blueprints/{blueprintId}/permit.
func (h *handler) derivePermit(w http.ResponseWriter, r *http.Request) {
	p, err := h.Permits.DerivePermit(r.Context(), chi.URLParam(r, "projectId"), chi.URLParam(r, "blueprintId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
