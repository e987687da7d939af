package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/V4T54L/udp-logview/internal/domain"
	"github.com/V4T54L/udp-logview/internal/usecase"
)

const (
	defaultRecordLimit = 200
	maxRecordLimit     = 10000
)

// Loop runs commands against the viewer on its owning goroutine.
type Loop interface {
	Do(ctx context.Context, fn func(uc *usecase.ViewerUseCase)) error
}

// RecordsResponse is the visible tail of the history.
type RecordsResponse struct {
	Total   int             `json:"total"`
	Visible int             `json:"visible"`
	Records []domain.Record `json:"records"`
}

// ControlHandler exposes the viewer's control surface over HTTP.
type ControlHandler struct {
	loop   Loop
	logger *slog.Logger
}

// NewControlHandler creates a new ControlHandler.
func NewControlHandler(loop Loop, logger *slog.Logger) *ControlHandler {
	return &ControlHandler{loop: loop, logger: logger}
}

// HealthCheck is a simple health check endpoint.
func (h *ControlHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStats returns total and visible counts plus pause and filter state.
// GET /stats
func (h *ControlHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	var stats usecase.Stats
	if !h.do(w, r, func(uc *usecase.ViewerUseCase) { stats = uc.Stats() }) {
		return
	}
	h.respondWithJSON(w, http.StatusOK, stats)
}

// GetRecords returns the newest visible records, oldest first.
// GET /records?limit=N
func (h *ControlHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecordLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecordLimit)
	}

	var resp RecordsResponse
	ok := h.do(w, r, func(uc *usecase.ViewerUseCase) {
		resp.Total = uc.Total()
		resp.Records = tail(uc, limit, &resp.Visible)
	})
	if !ok {
		return
	}
	h.respondWithJSON(w, http.StatusOK, resp)
}

// tail keeps the last limit visible records in a ring and counts them all.
func tail(uc *usecase.ViewerUseCase, limit int, visible *int) []domain.Record {
	ring := make([]domain.Record, 0, min(limit, uc.Total()))
	next := 0
	for rec := range uc.Visible() {
		*visible++
		if len(ring) < limit {
			ring = append(ring, rec)
			continue
		}
		ring[next] = rec
		next = (next + 1) % limit
	}
	if next == 0 {
		return ring
	}
	return append(ring[next:], ring[:next]...)
}

// SetFilter replaces the filter. An invalid pattern is accepted and reported
// as inactive.
// PUT /filter
func (h *ControlHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	var in usecase.FilterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var state usecase.FilterState
	if !h.do(w, r, func(uc *usecase.ViewerUseCase) { state = uc.SetFilter(in) }) {
		return
	}
	h.respondWithJSON(w, http.StatusOK, state)
}

// Pause stops merging received records into the history.
// POST /pause
func (h *ControlHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*usecase.ViewerUseCase).Pause)
}

// Resume restarts merging; records queued while paused are flushed.
// POST /resume
func (h *ControlHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*usecase.ViewerUseCase).Resume)
}

func (h *ControlHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(*usecase.ViewerUseCase)) {
	var paused bool
	ok := h.do(w, r, func(uc *usecase.ViewerUseCase) {
		fn(uc)
		paused = uc.Paused()
	})
	if !ok {
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]bool{"paused": paused})
}

// Clear empties the history buffer.
// POST /clear
func (h *ControlHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if !h.do(w, r, (*usecase.ViewerUseCase).ClearHistory) {
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]int{"total": 0})
}

// Export writes the visible records to a configured sink, "file" by default.
// POST /export?sink=file
func (h *ControlHandler) Export(w http.ResponseWriter, r *http.Request) {
	sink := r.URL.Query().Get("sink")
	if sink == "" {
		sink = "file"
	}

	var (
		result usecase.ExportResult
		err    error
	)
	if !h.do(w, r, func(uc *usecase.ViewerUseCase) { result, err = uc.ExportVisible(r.Context(), sink) }) {
		return
	}

	switch {
	case errors.Is(err, usecase.ErrUnknownSink):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.respondWithError(w, http.StatusInternalServerError, err.Error())
	default:
		h.respondWithJSON(w, http.StatusOK, map[string]any{
			"result":  result,
			"message": "Exported " + strconv.Itoa(result.Count) + " lines -> " + result.Destination,
		})
	}
}

// do runs fn on the viewer loop and writes an error response if it could not.
func (h *ControlHandler) do(w http.ResponseWriter, r *http.Request, fn func(uc *usecase.ViewerUseCase)) bool {
	if err := h.loop.Do(r.Context(), fn); err != nil {
		h.logger.Warn("viewer command not executed", "path", r.URL.Path, "error", err)
		h.respondWithError(w, http.StatusServiceUnavailable, "viewer unavailable")
		return false
	}
	return true
}

func (h *ControlHandler) respondWithError(w http.ResponseWriter, code int, msg string) {
	h.respondWithJSON(w, code, map[string]string{"error": msg})
}

func (h *ControlHandler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
