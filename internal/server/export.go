package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportEstimate handles GET /projects/{projectId}/estimates/{estimateId}/export.
func (h *handler) exportEstimate(w http.ResponseWriter, r *http.Request) {
	estimateID := chi.URLParam(r, "estimateId")
	data, err := h.Export.ExportEstimateXLSX(r.Context(), chi.URLParam(r, "projectId"), estimateID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "estimate-"+estimateID+".xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.WarnContext(r.Context(), "export.write_failed", "estimate_id", estimateID, "error", err)
	}
}
