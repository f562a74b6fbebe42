package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"courtmates_server/services"
	"courtmates_server/utils"

	"go.uber.org/zap"
)

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Server is running!"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Welcome to the server! This is the Courtmates API."})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service errors to status codes. Validation
// messages are meant for the user and are passed through.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.WriteError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidReference):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrMatchNotFound):
		utils.WriteError(w, http.StatusNotFound, "Match not found.")
	case errors.Is(err, services.ErrProfileNotFound):
		utils.WriteError(w, http.StatusNotFound, "Profile not found.")
	case errors.Is(err, services.ErrMatchFull):
		utils.WriteError(w, http.StatusConflict, "This match is already full.")
	default:
		logger.Error(fallback, zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, fallback)
	}
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
