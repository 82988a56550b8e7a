package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/sirupsen/logrus"
)

// ErrorPayload is the body of every failed API response.
type ErrorPayload struct {
	Error string `json:"error"`
}

// JSONResponse sends v as JSON with the given status.
func JSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err onto its HTTP status and writes {"error": msg}.
// Server-side failures are logged and their cause is not sent to the client.
func WriteError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.WithError(err).WithField("kind", apperr.KindOf(err).String()).Error("request failed")
	}
	JSONResponse(w, status, ErrorPayload{Error: apperr.PublicMessage(err)})
}

// DecodeJSON reads a JSON body into dst. Unknown fields are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid input")
	}
	return nil
}
