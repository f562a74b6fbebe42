package routes

import (
	"courtmates_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the routes that need no service
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
}
