package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Olprog59/go-crudstarter/internal/app"
	"github.com/Olprog59/go-crudstarter/internal/domain"
)

const defaultMaxBodyBytes = 1 << 20

// Handler gives HTTP handlers access to the application container.
type Handler struct {
	container    *app.Container
	maxBodyBytes int64
}

// NewHandler creates and returns a new Handler instance.
func NewHandler(container *app.Container) *Handler {
	maxBody := container.Config.Security.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Handler{container: container, maxBodyBytes: maxBody}
}

// requestError is a client mistake detected before reaching the service / Erreur client détectée avant le service
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

var (
	errInvalidID     = &requestError{http.StatusBadRequest, "invalid id"}
	errMalformedBody = &requestError{http.StatusBadRequest, "malformed JSON body"}
	errNotAnObject   = &requestError{http.StatusBadRequest, "request body must be a single JSON object"}
	errBodyTooLarge  = &requestError{http.StatusRequestEntityTooLarge, "request body too large"}
)

// ErrorResponse sends a JSON error body / Envoie une erreur JSON
func ErrorResponse(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]any{"error": message})
}

// writeJSON writes data with the given status / Écrit data avec le statut donné
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError is the only place an error becomes an HTTP status / Seul endroit où une erreur devient un statut HTTP
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr *requestError
		verr   *domain.ValidationError
	)
	switch {
	case errors.As(err, &reqErr):
		ErrorResponse(w, reqErr.message, reqErr.status)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":      "validation failed",
			"violations": verr.Violations,
		})
	case errors.Is(err, domain.ErrNotFound):
		ErrorResponse(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		ErrorResponse(w, "conflicts with existing data", http.StatusConflict)
	case errors.Is(err, domain.ErrTransient):
		ErrorResponse(w, "storage unavailable", http.StatusInternalServerError)
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		ErrorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}

// decodeObject reads a JSON object body, an empty body meaning {} / Lit un objet JSON, corps vide = {}
func (h *Handler) decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errMalformedBody
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errMalformedBody
	}
	if dec.More() {
		return nil, errNotAnObject
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotAnObject
	}
	return obj, nil
}

// pathID parses the {id} wildcard as a positive integer / Analyse le joker {id} en entier positif
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" || raw[0] < '0' || raw[0] > '9' {
		return 0, errInvalidID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
