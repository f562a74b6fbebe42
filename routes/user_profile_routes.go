package routes

import (
	"courtmates_server/controllers"
	"courtmates_server/middleware"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for user profile operations under /api/users
func RegisterUserProfileRoutes(r *mux.Router, controller *controllers.UserProfileController) {
	userRouter := r.PathPrefix("/api/users").Subrouter()

	// /me routes are registered first so {userId} does not shadow them
	userRouter.HandleFunc("/me", middleware.RequireUser(controller.SaveUserProfile)).Methods("PUT")
	userRouter.HandleFunc("/me/avatar", middleware.RequireUser(controller.SetAvatar)).Methods("PUT")
	userRouter.HandleFunc("/{userId}", controller.GetUserProfile).Methods("GET")
}
