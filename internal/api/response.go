package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/zamenjava/internal/apperr"
	"github.com/erazemk/zamenjava/internal/auth"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response for failures raised by the HTTP
// layer itself.
func jsonError(w http.ResponseWriter, status int, message string) {
	code := "internal"
	switch status {
	case http.StatusBadRequest:
		code = apperr.ErrInvalidInput.Code
	case http.StatusUnauthorized:
		code = "unauthenticated"
	}
	jsonResponse(w, status, errorResponse{Error: message, Code: code})
}

// writeError maps a market or store error to its response. Errors outside
// the taxonomy are logged and reported as internal.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	jsonResponse(w, status, errorResponse{Error: apperr.MessageOf(err), Code: apperr.CodeOf(err)})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(target)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// actor returns the authenticated user. AuthMiddleware guarantees it is set
// on protected routes.
func actor(r *http.Request) *auth.Claims {
	return GetClaims(r.Context())
}

// queryInt64 parses an optional integer query parameter.
func queryInt64(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, apperr.Invalid("%s must be an integer", name)
	}
	return n, nil
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string) (float64, bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, apperr.Invalid("%s must be a number", name)
	}
	return f, true, nil
}
