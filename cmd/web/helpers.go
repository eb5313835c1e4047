package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/liftcoach/internal/errors"
	"github.com/myrjola/liftcoach/internal/training"
)

const maxRequestBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "failed to write response", errors.SlogError(err))
	}
}

func (app *application) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	app.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// handleError maps coaching errors to responses. Invalid input and missing resources are the caller's fault and
// their messages are safe to show.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, training.ErrInvalidInput):
		app.writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, training.ErrNotFound):
		app.writeError(w, r, http.StatusNotFound, err.Error())
	default:
		app.serverError(w, r, err)
	}
}

// decodeJSON decodes the request body into dst. It responds with 400 and returns false on failure.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		app.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// parseWorkoutIDParam parses the "workoutID" path parameter. On failure it responds with 404 and returns false.
func (app *application) parseWorkoutIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	workoutID, err := strconv.ParseInt(r.PathValue("workoutID"), 10, 64)
	if err != nil || workoutID <= 0 {
		app.writeError(w, r, http.StatusNotFound, "unknown workout")
		return 0, false
	}
	return workoutID, true
}
