package utils

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// WriteJSONResponse writes data as JSON with the given status code. Data
// that cannot be encoded becomes a 500 instead of a truncated body.
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Failed to encode response"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		zap.L().Warn("failed to write response", zap.Error(err))
	}
}

// WriteError writes {"error": message}
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSONResponse(w, status, map[string]string{"error": message})
}
