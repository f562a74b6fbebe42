package routes

import (
	"courtmates_server/controllers"
	"courtmates_server/middleware"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes under /api/matches and /api/players
func RegisterMatchRoutes(r *mux.Router, controller *controllers.MatchController) {
	matchRouter := r.PathPrefix("/api/matches").Subrouter()

	matchRouter.HandleFunc("", controller.ListMatches).Methods("GET")
	matchRouter.HandleFunc("", middleware.RequireUser(controller.CreateMatch)).Methods("POST")
	matchRouter.HandleFunc("/{matchId}", controller.GetMatch).Methods("GET")
	matchRouter.HandleFunc("/{matchId}/join", middleware.RequireUser(controller.JoinMatch)).Methods("POST")

	r.HandleFunc("/api/players", controller.GetPlayers).Methods("GET")
}
