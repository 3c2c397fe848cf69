// Package simulations serves the mocked POP DOP simulation endpoints.
package simulations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"mockapi/internal/blob"
	"mockapi/internal/validation"
	"mockapi/pkg/domain"
)

const welcomeMessage = "Welcome to the Houdini VFX API"

// Service is the simulation behaviour the handler depends on.
type Service interface {
	Create(ctx context.Context, req domain.PopDopSimRequest) (domain.PopDopSimResponse, error)
	Get(ctx context.Context, simID string) domain.SimulationStatus
	Delete(ctx context.Context, simID string) string
	Submissions(ctx context.Context, simID string) ([]blob.Info, error)
}

var (
	simIDParam = validation.StringParam{Name: "sim_id", In: validation.InPath, Required: true}
	simSchema  = validation.Schema{Fields: []validation.Field{
		{Name: "particle_count", Kind: validation.KindInt, Required: true},
		{Name: "birth_rate", Kind: validation.KindFloat, Required: true},
		{Name: "velocity", Kind: validation.KindFloatMap, Required: true},
		{Name: "turbulence", Kind: validation.KindFloat, Required: true},
	}}
)

// Handler provides HTTP access to the simulation service.
type Handler struct {
	Service Service
	Logger  zerolog.Logger
	mux     *http.ServeMux
}

// NewHandler constructs a simulation HTTP handler with its routes registered.
func NewHandler(svc Service, logger zerolog.Logger) *Handler {
	h := &Handler{Service: svc, Logger: logger, mux: http.NewServeMux()}
	h.Register(h.mux)
	return h
}

// Register adds the simulation routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("POST /pop_dop_sim", h.handleCreate)
	mux.HandleFunc("GET /pop_dop_sim/{sim_id}", h.handleGet)
	mux.HandleFunc("DELETE /pop_dop_sim/{sim_id}", h.handleDelete)
	mux.HandleFunc("GET /pop_dop_sim/{sim_id}/submissions", h.handleSubmissions)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	var req domain.PopDopSimRequest
	b.Body(simSchema, &req)
	if !writeValidation(w, b) {
		return
	}
	resp, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	simID, _ := b.String(simIDParam)
	if !writeValidation(w, b) {
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Get(r.Context(), simID))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	simID, _ := b.String(simIDParam)
	if !writeValidation(w, b) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": h.Service.Delete(r.Context(), simID)})
}

func (h *Handler) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	simID, _ := b.String(simIDParam)
	if !writeValidation(w, b) {
		return
	}
	subs, err := h.Service.Submissions(r.Context(), simID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sim_id": simID, "submissions": subs})
}

func writeValidation(w http.ResponseWriter, b *validation.Binder) bool {
	err := b.Err()
	if err == nil {
		return true
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		writeJSON(w, http.StatusUnprocessableEntity, validation.Detail{Detail: errs})
	} else {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
	}
	return false
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.Logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("unhandled request error")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal Server Error"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
