package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/schema"
	"github.com/joseph-ayodele/blueprint-estimator/internal/services/project"
)

type createProjectBody struct {
	Name      string `json:"name"`
	CompanyID string `json:"companyId"`
	Address   string `json:"address"`
}

// createProject handles POST /projects.
func (h *handler) createProject(w http.ResponseWriter, r *http.Request) {
	var body createProjectBody
	if err := decode(w, r, nil, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.Projects.CreateProject(r.Context(), project.CreateProjectRequest{
		Name:      body.Name,
		CompanyID: body.CompanyID,
		Address:   body.Address,
		UserID:    userID(r),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// getProject handles GET /projects/{projectId}.
func (h *handler) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Projects.GetProject(r.Context(), chi.URLParam(r, "projectId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// putCompanySettings handles PUT /companies/{companyId}/settings.
func (h *handler) putCompanySettings(w http.ResponseWriter, r *http.Request) {
	var settings entity.CompanySettings
	if err := decode(w, r, schema.CompanySettings, &settings); err != nil {
		h.writeError(w, r, err)
		return
	}
	settings.CompanyID = chi.URLParam(r, "companyId")

	saved, err := h.Projects.PutCompanySettings(r.Context(), &settings, userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// getCompanySettings handles GET /companies/{companyId}/settings.
func (h *handler) getCompanySettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Projects.GetCompanySettings(r.Context(), chi.URLParam(r, "companyId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// saveTemplate handles POST /templates.
func (h *handler) saveTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl entity.Template
	if err := decode(w, r, schema.Template, &tpl); err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.Templates.SaveTemplate(r.Context(), &tpl, userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// getTemplate handles GET /templates/{templateId}.
func (h *handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Templates.GetTemplate(r.Context(), chi.URLParam(r, "templateId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}
