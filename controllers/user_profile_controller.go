package controllers

import (
	"net/http"

	"courtmates_server/middleware"
	"courtmates_server/models"
	"courtmates_server/services"
	"courtmates_server/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// UserProfileController handles requests related to user profiles
type UserProfileController struct {
	UserProfileService *services.UserProfileService
	Logger             *zap.Logger
}

// NewUserProfileController creates a new instance of UserProfileController
func NewUserProfileController(userProfileService *services.UserProfileService, logger *zap.Logger) *UserProfileController {
	return &UserProfileController{UserProfileService: userProfileService, Logger: loggerOrNop(logger)}
}

// GetUserProfile returns a profile by uid; "me" is the current user
func (c *UserProfileController) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "me" {
		userID = middleware.UserID(r.Context())
	}
	if userID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "missing X-User-ID")
		return
	}

	profile, err := c.UserProfileService.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, c.Logger, err, "Could not load profile.")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, profile)
}

// SaveUserProfile stores the settings form of the current user
func (c *UserProfileController) SaveUserProfile(w http.ResponseWriter, r *http.Request) {
	var input models.SaveUserProfileInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ctx := r.Context()
	profile, err := c.UserProfileService.SaveUserProfile(ctx, middleware.UserID(ctx), middleware.UserEmail(ctx), input)
	if err != nil {
		writeServiceError(w, c.Logger, err, "Could not save profile.")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Your changes have been saved.",
		"profile": profile,
	})
}

func (c *UserProfileController) SetAvatar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Avatar string `json:"avatar"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	profile, err := c.UserProfileService.SetAvatar(r.Context(), middleware.UserID(r.Context()), payload.Avatar)
	if err != nil {
		writeServiceError(w, c.Logger, err, "Could not update avatar.")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, profile)
}
