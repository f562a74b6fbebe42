package routes

import (
	"courtmates_server/controllers"
	"courtmates_server/middleware"

	"github.com/gorilla/mux"
)

// RegisterStorageRoutes sets up presigned URL routes under /api/storage
func RegisterStorageRoutes(r *mux.Router, controller *controllers.StorageController) {
	storageRouter := r.PathPrefix("/api/storage").Subrouter()

	storageRouter.HandleFunc("/upload-url", middleware.RequireUser(controller.GenerateUploadURL)).Methods("POST")
	storageRouter.HandleFunc("/read-url", controller.GenerateReadURL).Methods("POST")
}
