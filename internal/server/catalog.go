package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
	"github.com/joseph-ayodele/blueprint-estimator/internal/schema"
)

func (h *handler) listAssemblies(w http.ResponseWriter, r *http.Request) {
	list, err := h.PriceBook.ListAssemblies(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assemblies": list})
}

func (h *handler) upsertAssembly(w http.ResponseWriter, r *http.Request) {
	var a entity.Assembly
	if err := decode(w, r, schema.Assembly, &a); err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.PriceBook.UpsertAssembly(r.Context(), chi.URLParam(r, "code"), &a)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) listMaterials(w http.ResponseWriter, r *http.Request) {
	list, err := h.PriceBook.ListMaterials(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"materials": list})
}

func (h *handler) upsertMaterial(w http.ResponseWriter, r *http.Request) {
	var m entity.Material
	if err := decode(w, r, nil, &m); err != nil {
		h.writeError(w, r, err)
		return
	}
	saved, err := h.PriceBook.UpsertMaterial(r.Context(), chi.URLParam(r, "materialId"), &m)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
