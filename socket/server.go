package socket

import (
	"context"
	"net/http"
	"time"

	"courtmates_server/middleware"
	"courtmates_server/models"
	"courtmates_server/services"

	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"
)

const (
	namespace     = "/"
	matchesEvent  = "matches"
	refreshEvent  = "refresh"
	errorEvent    = "feed_error"
	refreshWindow = 30 * time.Second
)

// LiveFeed pushes every match feed snapshot to connected socket.io clients.
type LiveFeed struct {
	server *socketio.Server
	feed   *services.MatchFeed
	sub    *services.Subscription
	logger *zap.Logger
}

// NewLiveFeed initializes the socket.io server and subscribes it to feed
func NewLiveFeed(feed *services.MatchFeed, logger *zap.Logger) *LiveFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	lf := &LiveFeed{
		server: socketio.NewServer(nil),
		feed:   feed,
		logger: logger,
	}

	lf.server.OnConnect(namespace, func(s socketio.Conn) error {
		uid := s.RemoteHeader().Get(middleware.UserIDHeader)
		lf.logger.Info("socket connected", zap.String("id", s.ID()), zap.String("uid", uid))

		if latest := lf.feed.Latest(); latest != nil {
			s.Emit(matchesEvent, payload(latest))
		}
		return nil
	})

	// a client pulled to refresh; the result reaches everyone through the feed
	lf.server.OnEvent(namespace, refreshEvent, func(s socketio.Conn) {
		ctx, cancel := context.WithTimeout(context.Background(), refreshWindow)
		defer cancel()

		if _, err := lf.feed.Refresh(ctx); err != nil {
			s.Emit(errorEvent, map[string]string{"error": "Failed to load matches."})
		}
	})

	lf.server.OnError(namespace, func(s socketio.Conn, err error) {
		lf.logger.Warn("socket error", zap.Error(err))
	})

	lf.server.OnDisconnect(namespace, func(s socketio.Conn, reason string) {
		lf.logger.Info("socket disconnected", zap.String("id", s.ID()), zap.String("reason", reason))
	})

	lf.sub = feed.Subscribe(lf.broadcast, lf.broadcastError)
	return lf
}

func (lf *LiveFeed) broadcast(snapshot []models.Match) {
	lf.server.BroadcastToNamespace(namespace, matchesEvent, payload(snapshot))
}

func (lf *LiveFeed) broadcastError(error) {
	lf.server.BroadcastToNamespace(namespace, errorEvent, map[string]string{"error": "Failed to load matches."})
}

// payload lays out rosters for an anonymous viewer; clients derive their
// own joined state from players.
func payload(snapshot []models.Match) []models.MatchWithRoster {
	return models.WithRosters(snapshot, "")
}

// Serve runs the socket.io event loop until Close is called
func (lf *LiveFeed) Serve() {
	if err := lf.server.Serve(); err != nil {
		lf.logger.Error("socket server stopped", zap.Error(err))
	}
}

func (lf *LiveFeed) Handler() http.Handler {
	return lf.server
}

// Close cancels the feed subscription and shuts the server down
func (lf *LiveFeed) Close() error {
	lf.sub.Cancel()
	return lf.server.Close()
}
