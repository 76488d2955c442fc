package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"mcpanel/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps domain errors onto status codes. Details never reach the client.
func (api *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		api.log.Info("Request forbidden", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, domain.ErrNotFound):
		api.log.Debug("Resource not found", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, domain.ErrInvalid):
		api.log.Debug("Bad request", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusBadRequest, "Bad Request")
	default:
		api.log.Error("Error processing request", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decodeBody reads a JSON object, keeping numbers as json.Number so handlers
// can tell integers from floats.
func decodeBody(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.New("body is not a JSON object")
	}
	return data, nil
}

func stringField(data map[string]any, key string) (string, bool) {
	s, ok := data[key].(string)
	return s, ok
}
