package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"courtmates_server/middleware"
	"courtmates_server/models"
	"courtmates_server/services"
	"courtmates_server/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// MatchController handles requests related to matches
type MatchController struct {
	MatchService *services.MatchService
	Resolver     *services.PlayerProfileResolver
	Logger       *zap.Logger
}

func NewMatchController(matchService *services.MatchService, resolver *services.PlayerProfileResolver, logger *zap.Logger) *MatchController {
	return &MatchController{MatchService: matchService, Resolver: resolver, Logger: loggerOrNop(logger)}
}

// ListMatches refreshes the feed and returns every match with its roster
func (c *MatchController) ListMatches(w http.ResponseWriter, r *http.Request) {
	hideFull, _ := strconv.ParseBool(r.URL.Query().Get("hideFull"))

	matches, err := c.MatchService.ListMatches(r.Context(), services.MatchQuery{
		Search:   r.URL.Query().Get("q"),
		HideFull: hideFull,
	})
	if err != nil {
		writeServiceError(w, c.Logger, err, "Failed to load matches.")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, models.WithRosters(matches, middleware.UserID(r.Context())))
}

func (c *MatchController) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := c.MatchService.GetMatch(r.Context(), mux.Vars(r)["matchId"])
	if err != nil {
		writeServiceError(w, c.Logger, err, "Failed to load match.")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, models.WithRosters([]models.Match{*m}, middleware.UserID(r.Context()))[0])
}

func (c *MatchController) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input models.CreateMatchInput
	if err := decodeJSON(r, &input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	uid := middleware.UserID(r.Context())
	m, err := c.MatchService.CreateMatch(r.Context(), uid, input)
	if err != nil {
		writeServiceError(w, c.Logger, err, "Could not create match.")
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, models.MatchWithRoster{Match: *m, Roster: models.BuildRoster(*m, uid)})
}

// JoinMatch adds the current user to the match
func (c *MatchController) JoinMatch(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UserID(r.Context())
	m, err := c.MatchService.JoinMatch(r.Context(), mux.Vars(r)["matchId"], uid)
	if err != nil {
		writeServiceError(w, c.Logger, err, "Could not join match.")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, models.MatchWithRoster{Match: *m, Roster: models.BuildRoster(*m, uid)})
}

// GetPlayers resolves ?ids=a,b,c to player profiles
func (c *MatchController) GetPlayers(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		utils.WriteError(w, http.StatusBadRequest, "ids is required")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, c.Resolver.ResolvePlayers(r.Context(), ids))
}
