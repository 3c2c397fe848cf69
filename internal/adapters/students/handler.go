// Package students serves the student CRUD endpoints.
package students

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"mockapi/internal/validation"
	"mockapi/pkg/domain"
)

// Service is the student behaviour the handler depends on.
type Service interface {
	Get(ctx context.Context, id int) (domain.Student, error)
	FindByName(ctx context.Context, name domain.Optional[string]) (domain.StudentEntry, bool, error)
	Create(ctx context.Context, id int, st domain.Student) (domain.Student, error)
	Update(ctx context.Context, id int, patch domain.StudentPatch) (domain.Student, error)
	Delete(ctx context.Context, id int) error
}

const (
	helloMessage    = "Hello, FastAPI!"
	msgExists       = "Students exist"
	msgUpdateAbsent = "Students does not exist"
	msgDeleteAbsent = "Student does not exist"
	// Clients match on this exact text, spelling included.
	msgDeleted  = "Student deleted succesfully"
	msgNotFound = "Not found"
)

var (
	studentIDParam = validation.IntParam{Name: "student_id", In: validation.InPath, Required: true}
	// Only ids 1 and 2 are readable by id.
	boundedIDParam = validation.IntParam{
		Name: "student_id", In: validation.InPath, Required: true,
		Gt: validation.Bound(0), Lt: validation.Bound(3),
	}
	nameParam = validation.StringParam{Name: "name", In: validation.InQuery}
	testParam = validation.IntParam{Name: "test", In: validation.InQuery, Required: true}

	yearAliases   = []string{"class"}
	studentSchema = validation.Schema{Fields: []validation.Field{
		{Name: "name", Kind: validation.KindString, Required: true},
		{Name: "age", Kind: validation.KindInt, Required: true},
		{Name: "year", Kind: validation.KindString, Required: true, Aliases: yearAliases},
	}}
	patchSchema = validation.Schema{Fields: []validation.Field{
		{Name: "name", Kind: validation.KindString},
		{Name: "age", Kind: validation.KindInt},
		{Name: "year", Kind: validation.KindString, Aliases: yearAliases},
	}}
)

// Handler provides HTTP access to the student store.
type Handler struct {
	Service Service
	Logger  zerolog.Logger
	mux     *http.ServeMux
}

// NewHandler constructs a student HTTP handler with its routes registered.
func NewHandler(svc Service, logger zerolog.Logger) *Handler {
	h := &Handler{Service: svc, Logger: logger, mux: http.NewServeMux()}
	h.Register(h.mux)
	return h
}

// Register adds the student routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /get-student/{student_id}", h.handleGet)
	mux.HandleFunc("GET /get-by-name/{student_id}", h.handleGetByName)
	mux.HandleFunc("POST /create-student/{student_id}", h.handleCreate)
	mux.HandleFunc("PUT /update-student/{student_id}", h.handleUpdate)
	mux.HandleFunc("DELETE /delete-student/{student_id}", h.handleDelete)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": helloMessage})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	id := b.Int(boundedIDParam)
	if !h.bound(w, b) {
		return
	}
	st, err := h.Service.Get(r.Context(), id)
	if err != nil {
		// Reading a key inside the allowed range that holds no record is an
		// unhandled fault, not a domain outcome.
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleGetByName(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	_ = b.Int(studentIDParam)
	name, supplied := b.String(nameParam)
	_ = b.Int(testParam)
	if !h.bound(w, b) {
		return
	}
	lookup := domain.Optional[string]{}
	if supplied {
		lookup = domain.Some(name)
	}
	entry, found, err := h.Service.FindByName(r.Context(), lookup)
	if errors.Is(err, domain.ErrNoStudents) {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]string{"Data": msgNotFound})
		return
	}
	writeJSON(w, http.StatusOK, entry.Student)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	id := b.Int(studentIDParam)
	var st domain.Student
	b.Body(studentSchema, &st)
	if !h.bound(w, b) {
		return
	}
	created, err := h.Service.Create(r.Context(), id, st)
	switch {
	case errors.Is(err, domain.ErrStudentExists):
		writeJSON(w, http.StatusOK, map[string]string{"Error": msgExists})
	case err != nil:
		h.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, created)
	}
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	id := b.Int(studentIDParam)
	var patch domain.StudentPatch
	b.Body(patchSchema, &patch)
	if !h.bound(w, b) {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, patch)
	switch {
	case domain.IsStudentNotFound(err):
		writeJSON(w, http.StatusOK, map[string]string{"Error": msgUpdateAbsent})
	case err != nil:
		h.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, updated)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	b := validation.Bind(r)
	id := b.Int(studentIDParam)
	if !h.bound(w, b) {
		return
	}
	err := h.Service.Delete(r.Context(), id)
	switch {
	case domain.IsStudentNotFound(err):
		writeJSON(w, http.StatusOK, map[string]string{"Error": msgDeleteAbsent})
	case err != nil:
		h.internalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"Message": msgDeleted})
	}
}

// bound writes the 422 payload and returns false when binding failed.
func (h *Handler) bound(w http.ResponseWriter, b *validation.Binder) bool {
	err := b.Err()
	if err == nil {
		return true
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, validation.Detail{Detail: errs})
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
