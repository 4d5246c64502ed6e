package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/loader"
	"github.com/joshharrison/critpath/internal/reporter"
)

// maxBodyBytes bounds the size of an uploaded task list.
const maxBodyBytes = 8 << 20

var errBadRequest = errors.New("bad request")

// ScheduleHandler solves task lists posted over HTTP.
type ScheduleHandler struct {
	config cpm.Config
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(config cpm.Config) *ScheduleHandler {
	return &ScheduleHandler{config: config}
}

// Health handles GET /v1/health.
func (h *ScheduleHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Schedule handles POST /v1/schedule. The body is a JSON task list, or CSV
// when sent as text/csv.
func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: read body: %v", errBadRequest, err))
		return
	}

	format := "json"
	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mediaType == "text/csv" {
		format = "csv"
	}

	records, err := loader.Parse(format, data)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	g, err := graph.Build(records)
	if err != nil {
		writeError(w, err)
		return
	}

	sched, err := cpm.SolveWith(g, h.config)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reporter.New(g, sched, 0).Document())
}
