package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"courtmates_server/models"
)

type staticLister struct {
	matches []models.Match
	err     error
	calls   int
}

func (s *staticLister) ListMatches(context.Context) ([]models.Match, error) {
	s.calls++
	return s.matches, s.err
}

type passthroughResolver struct{ calls int }

func (p *passthroughResolver) Resolve(_ context.Context, matches []models.Match) []models.Match {
	p.calls++
	return matches
}

func newTestFeed(t *testing.T, lister MatchLister, resolver MatchResolver, hideFull bool) *MatchFeed {
	t.Helper()
	feed, err := NewMatchFeed(lister, resolver, FeedOptions{Interval: time.Minute, HideFull: hideFull}, nil)
	if err != nil {
		t.Fatalf("new feed: %v", err)
	}
	return feed
}

func TestFeedDeliversEverySnapshot(t *testing.T) {
	lister := &staticLister{matches: []models.Match{{MatchID: "m1", MaxPlayers: 4}}}
	resolver := &passthroughResolver{}
	feed := newTestFeed(t, lister, resolver, false)

	var received int
	sub := feed.Subscribe(func(matches []models.Match) { received++ }, nil)
	defer sub.Cancel()

	for i := 0; i < 3; i++ {
		if _, err := feed.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}

	if received != 3 || resolver.calls != 3 {
		t.Fatalf("expected 3 snapshots resolved and delivered, got %d/%d", resolver.calls, received)
	}
	if latest := feed.Latest(); len(latest) != 1 || latest[0].MatchID != "m1" {
		t.Fatalf("unexpected latest snapshot: %+v", latest)
	}
}

func TestFeedCancelStopsDelivery(t *testing.T) {
	feed := newTestFeed(t, &staticLister{}, &passthroughResolver{}, false)

	var received int
	sub := feed.Subscribe(func([]models.Match) { received++ }, nil)
	_, _ = feed.Refresh(context.Background())

	sub.Cancel()
	sub.Cancel()
	_, _ = feed.Refresh(context.Background())

	if received != 1 {
		t.Fatalf("expected delivery to stop after cancel, got %d", received)
	}
}

func TestFeedReportsErrors(t *testing.T) {
	boom := errors.New("scan failed")
	feed := newTestFeed(t, &staticLister{err: boom}, &passthroughResolver{}, false)

	var got error
	sub := feed.Subscribe(func([]models.Match) { t.Fatalf("unexpected snapshot") }, func(err error) { got = err })
	defer sub.Cancel()

	if _, err := feed.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected scan error, got %v", err)
	}
	if !errors.Is(got, boom) {
		t.Fatalf("expected error handler to be called, got %v", got)
	}
	if feed.Latest() != nil {
		t.Fatalf("expected no snapshot after a failed refresh")
	}
}

func TestFeedHidesFullMatchesWhenConfigured(t *testing.T) {
	lister := &staticLister{matches: []models.Match{
		{MatchID: "open", MaxPlayers: 4, Players: []string{"u1"}},
		{MatchID: "full", MaxPlayers: 2, Players: []string{"u1", "u2"}},
	}}

	shown, _ := newTestFeed(t, lister, &passthroughResolver{}, false).Refresh(context.Background())
	if len(shown) != 2 {
		t.Fatalf("expected full matches to be kept by default, got %d", len(shown))
	}

	hidden, _ := newTestFeed(t, lister, &passthroughResolver{}, true).Refresh(context.Background())
	if len(hidden) != 1 || hidden[0].MatchID != "open" {
		t.Fatalf("expected only the open match, got %+v", hidden)
	}
}

func TestFeedStartPollsImmediately(t *testing.T) {
	lister := &staticLister{matches: []models.Match{{MatchID: "m1"}}}
	feed := newTestFeed(t, lister, &passthroughResolver{}, false)

	delivered := make(chan []models.Match, 1)
	sub := feed.Subscribe(func(m []models.Match) {
		select {
		case delivered <- m:
		default:
		}
	}, nil)
	defer sub.Cancel()

	if err := feed.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer feed.Stop()

	select {
	case m := <-delivered:
		if len(m) != 1 {
			t.Fatalf("unexpected snapshot: %+v", m)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a snapshot right after start")
	}
}
