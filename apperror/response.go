package apperror

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// BearerChallenge is sent in the WWW-Authenticate header of every 401 response.
const BearerChallenge = "Bearer"

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil { // Avoid writing nil, which would result in a "null" body
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// WriteError converts err into an AppError (unknown errors become InternalError)
// and writes it as an ErrorResponse. Auth errors carry the bearer challenge.
// Server-side failures are logged with their underlying cause; the client only
// ever sees Message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := FromError(err)
	if !ok {
		appErr = NewInternalError("an unexpected error occurred", err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(appErr.Err).
			Str("type", appErr.Type.String()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg(appErr.Message)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", BearerChallenge)
	}

	WriteJSON(w, status, appErr.ToResponse())
}
