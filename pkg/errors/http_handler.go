package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError renders err as a JSON ErrorResponse. Errors that are not AppErrors become 500s.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	return json.NewEncoder(w).Encode(appErr.Response())
}
