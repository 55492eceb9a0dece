// Package api exposes HTTP handlers for the workout summary service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/fitsummary/internal/auth"
	"example.com/fitsummary/internal/domain"
	"example.com/fitsummary/internal/persistence"
	"example.com/fitsummary/internal/report"
	"example.com/fitsummary/internal/training"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/workouts/totals", h.workoutTotals)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.recordWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	id, suffix, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	// Workout ids are always UUIDs; anything else cannot exist.
	parsed, err := uuid.Parse(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "workout not found")
		return
	}
	id = parsed.String()

	switch suffix {
	case "":
		h.getWorkout(w, r, id)
	case "report":
		h.workoutReport(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) recordWorkout(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	var req RecordWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	record, replay, err := h.service.RecordWorkout(r.Context(), domain.RecordWorkoutInput{
		TenantID:       claims.TenantID,
		UserID:         req.UserID,
		WorkoutType:    req.WorkoutType,
		Data:           req.Data,
		RecordedAt:     req.RecordedAt,
		Source:         req.Source,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, RecordWorkoutResponse{
		WorkoutID: record.ID,
		Summary:   record.Summary,
		Message:   report.Message(record.Summary),
		Replay:    replay,
	})
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsRead, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	record, err := h.service.GetWorkout(r.Context(), claims.TenantID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutView(*record))
}

func (h *Handler) workoutReport(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsRead, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	record, err := h.service.GetWorkout(r.Context(), claims.TenantID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.Message(record.Summary) + "\n"))
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsRead, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user_id parameter")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	records, next, err := h.service.ListWorkoutsByUser(r.Context(), claims.TenantID, userID, cursor, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]WorkoutView, 0, len(records))
	for _, record := range records {
		items = append(items, toWorkoutView(record))
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) workoutTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	claims, ok := requireScope(w, r, auth.ScopeWorkoutsRead, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}

	userID := r.URL.Query().Get("user_id")
	if strings.TrimSpace(userID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user_id parameter")
		return
	}

	totals, err := h.service.Totals(r.Context(), claims.TenantID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := TotalsResponse{UserID: userID, Activities: make([]TotalsView, 0, len(totals))}
	for _, t := range totals {
		resp.Activities = append(resp.Activities, TotalsView{
			ActivityType:  t.ActivityType,
			Label:         t.ActivityType.Label(),
			Workouts:      t.Workouts,
			DurationHours: t.DurationHours,
			DistanceKm:    t.DistanceKm,
			Calories:      t.Calories,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireScope(w http.ResponseWriter, r *http.Request, scopes ...string) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !claims.HasAnyScope(scopes...) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scopes[0]+" required")
		return nil, false
	}
	return claims, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, training.ErrUnknownActivity):
		writeError(w, http.StatusUnprocessableEntity, "unknown_activity", err.Error())
	case errors.Is(err, training.ErrInvalidParameterCount), errors.Is(err, training.ErrInvalidParameter):
		writeError(w, http.StatusUnprocessableEntity, "invalid_parameters", err.Error())
	case errors.Is(err, domain.ErrMissingUser):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrWorkoutNotFound):
		writeError(w, http.StatusNotFound, "not_found", "workout not found")
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// RecordWorkoutRequest is the payload for POST /v1/workouts.
type RecordWorkoutRequest struct {
	UserID      string    `json:"user_id"`
	WorkoutType string    `json:"workout_type"`
	Data        []float64 `json:"data"`
	RecordedAt  time.Time `json:"recorded_at"`
	Source      string    `json:"source"`
}

// Validate checks the envelope; the readings are validated by the service.
func (r RecordWorkoutRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.WorkoutType) == "" {
		return errors.New("workout_type is required")
	}
	return nil
}

// RecordWorkoutResponse describes the response body for record.
type RecordWorkoutResponse struct {
	WorkoutID string           `json:"workout_id"`
	Summary   training.Summary `json:"summary"`
	Message   string           `json:"message"`
	Replay    bool             `json:"idempotent_replay"`
}

// WorkoutView exposes full details about a stored workout.
type WorkoutView struct {
	WorkoutID   string            `json:"workout_id"`
	TenantID    string            `json:"tenant_id"`
	UserID      string            `json:"user_id"`
	WorkoutType training.Activity `json:"workout_type"`
	Data        []float64         `json:"data"`
	Summary     training.Summary  `json:"summary"`
	Source      string            `json:"source"`
	Version     string            `json:"version"`
	RecordedAt  time.Time         `json:"recorded_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// TotalsView is one activity row of a totals response.
type TotalsView struct {
	ActivityType  training.Activity `json:"workout_type"`
	Label         string            `json:"label"`
	Workouts      int               `json:"workouts"`
	DurationHours float64           `json:"duration_hours"`
	DistanceKm    float64           `json:"distance_km"`
	Calories      float64           `json:"calories"`
}

// TotalsResponse aggregates a user's workouts per activity.
type TotalsResponse struct {
	UserID     string       `json:"user_id"`
	Activities []TotalsView `json:"activities"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{
			"type":   "server_error",
			"detail": "unable to encode response",
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func toWorkoutView(record domain.WorkoutRecord) WorkoutView {
	return WorkoutView{
		WorkoutID:   record.ID,
		TenantID:    record.TenantID,
		UserID:      record.UserID,
		WorkoutType: record.ActivityType,
		Data:        record.Params,
		Summary:     record.Summary,
		Source:      record.Source,
		Version:     record.Version,
		RecordedAt:  record.RecordedAt,
		CreatedAt:   record.CreatedAt,
	}
}
