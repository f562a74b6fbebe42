package services

import (
	"context"
	"fmt"
	"strings"

	"courtmates_server/cache"
	"courtmates_server/models"
	"courtmates_server/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PlayerDirectory looks up raw users records by uid. A call never carries
// more than models.PlayerBatchSize ids.
type PlayerDirectory interface {
	FetchPlayerRecords(ctx context.Context, ids []string) ([]models.PlayerRecord, error)
}

// AvatarURLResolver turns stored avatar references into displayable URLs.
type AvatarURLResolver interface {
	URLFromReference(ctx context.Context, ref string) (string, error)
	URLFromPath(ctx context.Context, path string) (string, error)
}

// PlayerProfileResolver annotates matches with the profiles of their
// players, fetching only what the cache does not hold yet. The cache keeps
// the stored avatar reference; URLs are presigned on every pass so they
// never outlive their expiry.
type PlayerProfileResolver struct {
	directory PlayerDirectory
	avatars   AvatarURLResolver
	cache     cache.ProfileCache
	batchSize int
	logger    *zap.Logger
}

func NewPlayerProfileResolver(directory PlayerDirectory, avatars AvatarURLResolver, profiles cache.ProfileCache, logger *zap.Logger) *PlayerProfileResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlayerProfileResolver{
		directory: directory,
		avatars:   avatars,
		cache:     profiles,
		batchSize: models.PlayerBatchSize,
		logger:    logger,
	}
}

// Resolve returns a copy of matches with PlayerProfiles filled in player
// order. Players whose profile could not be resolved are left out.
func (r *PlayerProfileResolver) Resolve(ctx context.Context, matches []models.Match) []models.Match {
	profiles := r.present(ctx, r.lookup(ctx, playerIDs(matches)))

	out := make([]models.Match, len(matches))
	for i, m := range matches {
		m.PlayerProfiles = profilesFor(m.Players, profiles)
		out[i] = m
	}
	return out
}

// ResolvePlayers returns the profiles of ids in the given order, without
// duplicates and without ids that could not be resolved.
func (r *PlayerProfileResolver) ResolvePlayers(ctx context.Context, ids []string) []models.PlayerProfile {
	unique := dedupe(ids)
	return profilesFor(unique, r.present(ctx, r.lookup(ctx, unique)))
}

// ResolveAvatar maps a raw avatar value to a URL. Web URLs pass through,
// s3:// references and plain storage paths are presigned. Empty input or
// a failed resolution yields nil.
func (r *PlayerProfileResolver) ResolveAvatar(ctx context.Context, raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "http") {
		return &raw
	}

	var (
		url string
		err error
	)
	if strings.HasPrefix(raw, referenceScheme) {
		url, err = r.avatars.URLFromReference(ctx, raw)
	} else {
		url, err = r.avatars.URLFromPath(ctx, raw)
	}
	if err != nil {
		r.logger.Warn("avatar resolution failed", zap.String("avatar", raw), zap.Error(err))
		return nil
	}
	return &url
}

// present copies profiles with their avatar references turned into URLs.
func (r *PlayerProfileResolver) present(ctx context.Context, profiles map[string]models.PlayerProfile) map[string]models.PlayerProfile {
	out := make(map[string]models.PlayerProfile, len(profiles))
	for id, p := range profiles {
		if p.Avatar != nil {
			p.Avatar = r.ResolveAvatar(ctx, *p.Avatar)
		}
		out[id] = p
	}
	return out
}

// lookup returns profiles as cached, with raw avatar references.
func (r *PlayerProfileResolver) lookup(ctx context.Context, ids []string) map[string]models.PlayerProfile {
	if len(ids) == 0 {
		return map[string]models.PlayerProfile{}
	}

	cached, err := r.cache.GetMany(ctx, ids)
	if err != nil {
		r.logger.Warn("profile cache read failed", zap.Error(err))
		cached = map[string]models.PlayerProfile{}
	}

	var missing []string
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return cached
	}

	fetched, err := r.fetch(ctx, missing)
	if err != nil {
		r.logger.Error("player profile batch failed",
			zap.Int("missing", len(missing)),
			zap.Error(err))
		return cached
	}

	if err := r.cache.Merge(ctx, fetched); err != nil {
		r.logger.Warn("profile cache merge failed", zap.Error(err))
	}
	return cache.Merge(cached, fetched)
}

// fetch issues one directory call per batch, all in flight at once. Any
// failing batch fails the whole fetch.
func (r *PlayerProfileResolver) fetch(ctx context.Context, ids []string) (map[string]models.PlayerProfile, error) {
	batches := utils.Chunk(ids, r.batchSize)
	results := make([][]models.PlayerProfile, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			records, err := r.directory.FetchPlayerRecords(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch %d: %w", i, err)
			}
			profiles := make([]models.PlayerProfile, 0, len(records))
			for _, rec := range records {
				if rec.UID == "" {
					continue
				}
				p := models.PlayerProfile{ID: rec.UID, Name: rec.DisplayName()}
				if raw := strings.TrimSpace(rec.RawAvatar()); raw != "" {
					p.Avatar = &raw
				}
				profiles = append(profiles, p)
			}
			results[i] = profiles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fetched := make(map[string]models.PlayerProfile)
	for _, profiles := range results {
		for _, p := range profiles {
			fetched[p.ID] = p
		}
	}
	return fetched, nil
}

func playerIDs(matches []models.Match) []string {
	var ids []string
	for _, m := range matches {
		ids = append(ids, m.Players...)
	}
	return dedupe(ids)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func profilesFor(ids []string, profiles map[string]models.PlayerProfile) []models.PlayerProfile {
	out := make([]models.PlayerProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
