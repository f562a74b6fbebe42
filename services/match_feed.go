package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courtmates_server/models"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const feedPollTimeout = 30 * time.Second

// MatchLister reads every stored match, already decoded.
type MatchLister interface {
	ListMatches(ctx context.Context) ([]models.Match, error)
}

// MatchResolver annotates matches with player profiles.
type MatchResolver interface {
	Resolve(ctx context.Context, matches []models.Match) []models.Match
}

type (
	SnapshotFunc func(matches []models.Match)
	ErrorFunc    func(err error)
)

type FeedOptions struct {
	Interval time.Duration
	HideFull bool
}

// MatchFeed polls the matches collection and hands every snapshot,
// resolved, to its subscribers.
type MatchFeed struct {
	source    MatchLister
	resolver  MatchResolver
	opts      FeedOptions
	logger    *zap.Logger
	scheduler gocron.Scheduler

	mu     sync.RWMutex
	subs   map[uint64]subscriber
	nextID uint64
	latest []models.Match
}

type subscriber struct {
	onSnapshot SnapshotFunc
	onError    ErrorFunc
}

// Subscription is returned by Subscribe. Cancel stops delivery and may be
// called any number of times.
type Subscription struct {
	feed *MatchFeed
	id   uint64
	once sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.subs, s.id)
		s.feed.mu.Unlock()
	})
}

func NewMatchFeed(source MatchLister, resolver MatchResolver, opts FeedOptions, logger *zap.Logger) (*MatchFeed, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &MatchFeed{
		source:    source,
		resolver:  resolver,
		opts:      opts,
		logger:    logger,
		scheduler: s,
		subs:      make(map[uint64]subscriber),
	}, nil
}

// Subscribe registers handlers for future snapshots. onError may be nil.
func (f *MatchFeed) Subscribe(onSnapshot SnapshotFunc, onError ErrorFunc) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.subs[f.nextID] = subscriber{onSnapshot: onSnapshot, onError: onError}
	return &Subscription{feed: f, id: f.nextID}
}

// Start polls immediately and then every interval. A poll still running
// when the next one is due delays it rather than overlapping.
func (f *MatchFeed) Start() error {
	_, err := f.scheduler.NewJob(
		gocron.DurationJob(f.opts.Interval),
		gocron.NewTask(f.poll),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create match feed job: %w", err)
	}

	f.scheduler.Start()
	f.logger.Info("match feed started", zap.Duration("interval", f.opts.Interval))
	return nil
}

func (f *MatchFeed) Stop() error {
	return f.scheduler.Shutdown()
}

func (f *MatchFeed) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), feedPollTimeout)
	defer cancel()

	// errors are already logged and delivered by Refresh
	_, _ = f.Refresh(ctx)
}

// Refresh fetches and resolves one snapshot, stores it as the latest and
// delivers it to subscribers.
func (f *MatchFeed) Refresh(ctx context.Context) ([]models.Match, error) {
	matches, err := f.source.ListMatches(ctx)
	if err != nil {
		f.logger.Error("match feed fetch failed", zap.Error(err))
		f.publishError(err)
		return nil, err
	}

	snapshot := f.resolver.Resolve(ctx, matches)
	if f.opts.HideFull {
		snapshot = OpenMatches(snapshot)
	}

	f.mu.Lock()
	f.latest = snapshot
	f.mu.Unlock()

	f.publish(snapshot)
	return snapshot, nil
}

// Latest returns the last delivered snapshot, nil before the first one.
func (f *MatchFeed) Latest() []models.Match {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.latest == nil {
		return nil
	}
	out := make([]models.Match, len(f.latest))
	copy(out, f.latest)
	return out
}

func (f *MatchFeed) HideFull() bool {
	return f.opts.HideFull
}

func (f *MatchFeed) handlers() []subscriber {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]subscriber, 0, len(f.subs))
	for _, s := range f.subs {
		out = append(out, s)
	}
	return out
}

func (f *MatchFeed) publish(snapshot []models.Match) {
	for _, s := range f.handlers() {
		if s.onSnapshot != nil {
			s.onSnapshot(snapshot)
		}
	}
}

func (f *MatchFeed) publishError(err error) {
	for _, s := range f.handlers() {
		if s.onError != nil {
			s.onError(err)
		}
	}
}

// OpenMatches drops the matches that are full.
func OpenMatches(matches []models.Match) []models.Match {
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if !m.IsFull() {
			out = append(out, m)
		}
	}
	return out
}
