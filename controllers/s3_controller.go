package controllers

import (
	"net/http"
	"strings"

	"courtmates_server/middleware"
	"courtmates_server/services"
	"courtmates_server/utils"

	"go.uber.org/zap"
)

// StorageController issues presigned avatar URLs
type StorageController struct {
	S3       *services.S3Service
	Resolver *services.PlayerProfileResolver
	Logger   *zap.Logger
}

func NewStorageController(s3 *services.S3Service, resolver *services.PlayerProfileResolver, logger *zap.Logger) *StorageController {
	return &StorageController{S3: s3, Resolver: resolver, Logger: loggerOrNop(logger)}
}

// GenerateUploadURL presigns an avatar upload for the current user
func (c *StorageController) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(payload.FileName) == "" {
		utils.WriteError(w, http.StatusBadRequest, "fileName is required")
		return
	}

	upload, err := c.S3.UploadURL(r.Context(), middleware.UserID(r.Context()), payload.FileName, payload.FileType)
	if err != nil {
		writeServiceError(w, c.Logger, err, "Failed to generate upload URL.")
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, upload)
}

// GenerateReadURL resolves a stored avatar value the same way rosters do
func (c *StorageController) GenerateReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Avatar string `json:"avatar"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	url := c.Resolver.ResolveAvatar(r.Context(), payload.Avatar)
	utils.WriteJSONResponse(w, http.StatusOK, map[string]*string{"url": url})
}
