package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"flight_gateway/internal/domain"
)

type errorBody struct {
	Message string `json:"message"`
}

// writeError is the single place where pipeline failures become responses.
// A backend rejection keeps its status and raw body; the gateway adds nothing.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		be *domain.BackendError
		ie *domain.InfraError
	)
	switch {
	case errors.As(err, &be):
		writeMessage(w, be.Status, be.Body)
	case errors.Is(err, domain.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "))
	case errors.Is(err, domain.ErrCorrelation):
		log.Ctx(r.Context()).Error().Err(err).Msg("backend data inconsistent")
		writeMessage(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &ie):
		log.Ctx(r.Context()).Warn().Err(err).Str("backend", ie.Service).Msg("backend unavailable")
		writeMessage(w, http.StatusServiceUnavailable, ie.Service+" service unavailable")
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		status, body = http.StatusInternalServerError, []byte(`{"message":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}
