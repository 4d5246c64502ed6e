package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/loader"
)

// Error codes returned in ErrorBody.Code.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeCycleDetected    = "CYCLE_DETECTED"
	CodeEmptyGraph       = "EMPTY_GRAPH"
	CodeInternal         = "INTERNAL_ERROR"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps a load, build or solve error to an HTTP status and code.
func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	writeJSON(w, status, ErrorResponse{Error: body})
}

func classify(err error) (int, ErrorBody) {
	var (
		cycleErr *graph.CycleError
		validErr *graph.ValidationError
		parseErr *loader.ParseError
		emptyErr cpm.EmptyGraphError
	)

	switch {
	case errors.As(err, &cycleErr):
		return http.StatusUnprocessableEntity, ErrorBody{
			Code:    CodeCycleDetected,
			Message: cycleErr.Error(),
			Context: map[string]any{"cycle": cycleErr.Cycle, "unsorted": cycleErr.Unsorted},
		}
	case errors.As(err, &validErr):
		body := ErrorBody{Code: CodeValidationFailed, Message: validErr.Error()}
		if validErr.TaskID != "" {
			body.Context = map[string]any{"task_id": validErr.TaskID}
		}
		return http.StatusBadRequest, body
	case errors.As(err, &emptyErr):
		return http.StatusUnprocessableEntity, ErrorBody{Code: CodeEmptyGraph, Message: emptyErr.Error()}
	case errors.As(err, &parseErr), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, ErrorBody{Code: CodeInvalidInput, Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: "internal error"}
	}
}
