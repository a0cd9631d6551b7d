package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/joseph-ayodele/blueprint-estimator/internal/async"
	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/schema"
)

const maxBodyBytes = 4 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, async.ErrQueueFull), errors.Is(err, async.ErrQueueClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: http.StatusText(status), Message: err.Error()}

	var appErr *common.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Code
		resp.Message = appErr.Message
		if appErr.Cause != nil && !isSentinel(appErr.Cause) {
			resp.Detail = appErr.Cause.Error()
		}
	}
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "http.request.failed", "path", r.URL.Path, "error", err)
		resp.Message = "internal error"
		resp.Detail = ""
	}
	writeJSON(w, status, resp)
}

func isSentinel(err error) bool {
	switch err {
	case common.ErrNotFound, common.ErrInvalidInput, common.ErrValidation,
		common.ErrExtraction, common.ErrPersistence, common.ErrNotImplemented:
		return true
	}
	return false
}

// decode reads the body, validates it against v when given, and unmarshals it
// into dst.
func decode(w http.ResponseWriter, r *http.Request, v *schema.Validator, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return common.InvalidInput("request body is required")
	}
	return decodeBytes(body, v, dst)
}

// decodeOptional is decode for routes whose body may be omitted.
func decodeOptional(w http.ResponseWriter, r *http.Request, v *schema.Validator, dst any) error {
	body, err := readBody(w, r)
	if err != nil || len(body) == 0 {
		return err
	}
	return decodeBytes(body, v, dst)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, common.InvalidInput(fmt.Sprintf("read body: %v", err))
	}
	return body, nil
}

func decodeBytes(body []byte, v *schema.Validator, dst any) error {
	if v != nil {
		if err := v.Validate(body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return common.InvalidInput(fmt.Sprintf("malformed JSON: %v", err))
	}
	return nil
}
