package routes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/debemdeboas/quill/internal/apperr"
	"github.com/debemdeboas/quill/internal/config"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func JSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		routesLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func ErrorResponse(w http.ResponseWriter, statusCode int, message string, details ...string) {
	JSONResponse(w, statusCode, errorBody{Error: message, Details: details})
}

// writeError maps err onto its status code. Store failures keep their
// generic message; the cause only reaches the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	msg := apperr.Message(err, config.ErrInternalServer)

	var details []string
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		details = appErr.Details
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("kind", kind.String()).Msg("Request failed")
	}
	ErrorResponse(w, status, msg, details...)
}

// ParseJSONBody decodes the request body into v, rejecting malformed JSON
// and bodies over maxBodyBytes.
func ParseJSONBody(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.ValidationFailed(config.ErrInvalidJSON)
	}
	return nil
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
