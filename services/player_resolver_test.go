package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"courtmates_server/cache"
	"courtmates_server/models"
)

type fakeDirectory struct {
	mu      sync.Mutex
	calls   [][]string
	records map[string]models.PlayerRecord
	err     error
}

func (f *fakeDirectory) FetchPlayerRecords(_ context.Context, ids []string) ([]models.PlayerRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), ids...))
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	var out []models.PlayerRecord
	for _, id := range ids {
		if rec, ok := f.records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeDirectory) batchSizes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sizes := make([]int, len(f.calls))
	for i, c := range f.calls {
		sizes[i] = len(c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes
}

type fakeAvatars struct {
	mu       sync.Mutex
	refs     []string
	paths    []string
	failWith error
}

func (f *fakeAvatars) URLFromReference(_ context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs = append(f.refs, ref)
	if f.failWith != nil {
		return "", f.failWith
	}
	return "https://signed/ref/" + ref, nil
}

func (f *fakeAvatars) URLFromPath(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if f.failWith != nil {
		return "", f.failWith
	}
	return "https://signed/path/" + path, nil
}

func newTestResolver(dir *fakeDirectory, avatars *fakeAvatars, c cache.ProfileCache) *PlayerProfileResolver {
	if avatars == nil {
		avatars = &fakeAvatars{}
	}
	if c == nil {
		c = cache.NewMemoryCache(0, 0)
	}
	return NewPlayerProfileResolver(dir, avatars, c, nil)
}

func recordsFor(ids ...string) map[string]models.PlayerRecord {
	out := make(map[string]models.PlayerRecord, len(ids))
	for _, id := range ids {
		out[id] = models.PlayerRecord{UID: id, Name: "Player " + id}
	}
	return out
}

func TestResolveSingleMatchIssuesOneBatch(t *testing.T) {
	dir := &fakeDirectory{records: recordsFor("u1", "u2")}
	r := newTestResolver(dir, nil, nil)

	matches := []models.Match{{MatchID: "m1", Players: []string{"u1", "u2"}, MaxPlayers: 4}}
	got := r.Resolve(context.Background(), matches)

	if len(dir.calls) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(dir.calls))
	}
	if len(got[0].PlayerProfiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(got[0].PlayerProfiles))
	}
	if got[0].PlayerProfiles[0].ID != "u1" || got[0].PlayerProfiles[1].ID != "u2" {
		t.Fatalf("expected profiles in player order, got %+v", got[0].PlayerProfiles)
	}
	if matches[0].PlayerProfiles != nil {
		t.Fatalf("expected input matches to stay untouched")
	}

	roster := models.BuildRoster(got[0], "u3")
	if !roster.CanJoin || !roster.Slots[2].JoinAffordance {
		t.Fatalf("expected join affordance on slot 2, got %+v", roster)
	}
}

func TestResolveChunksIntoBatchesOfTen(t *testing.T) {
	var ids []string
	for i := 0; i < 25; i++ {
		ids = append(ids, fmt.Sprintf("u%02d", i))
	}
	dir := &fakeDirectory{records: recordsFor(ids...)}
	r := newTestResolver(dir, nil, nil)

	matches := []models.Match{
		{MatchID: "m1", Players: ids[:15]},
		{MatchID: "m2", Players: append([]string{ids[0]}, ids[10:]...)},
	}
	r.Resolve(context.Background(), matches)

	sizes := dir.batchSizes()
	if len(sizes) != 3 || sizes[0] != 10 || sizes[1] != 10 || sizes[2] != 5 {
		t.Fatalf("expected batches 10/10/5, got %v", sizes)
	}
}

func TestResolveSkipsCachedPlayers(t *testing.T) {
	c := cache.NewMemoryCache(0, 0)
	cachedName := "Cached"
	_ = c.Merge(context.Background(), map[string]models.PlayerProfile{
		"u1": {ID: "u1", Name: &cachedName},
	})
	dir := &fakeDirectory{records: recordsFor("u1", "u2")}
	r := newTestResolver(dir, nil, c)

	got := r.Resolve(context.Background(), []models.Match{{Players: []string{"u1", "u2"}}})

	if len(dir.calls) != 1 || len(dir.calls[0]) != 1 || dir.calls[0][0] != "u2" {
		t.Fatalf("expected only u2 to be fetched, got %v", dir.calls)
	}
	if *got[0].PlayerProfiles[0].Name != "Cached" {
		t.Fatalf("expected cached profile for u1")
	}

	r.Resolve(context.Background(), []models.Match{{Players: []string{"u1", "u2"}}})
	if len(dir.calls) != 1 {
		t.Fatalf("expected second pass to be served from cache, got %d calls", len(dir.calls))
	}
}

func TestResolveAvatar(t *testing.T) {
	avatars := &fakeAvatars{}
	r := newTestResolver(&fakeDirectory{}, avatars, nil)
	ctx := context.Background()

	if got := r.ResolveAvatar(ctx, "https://cdn/x.png"); got == nil || *got != "https://cdn/x.png" {
		t.Fatalf("expected web url to pass through, got %v", got)
	}
	if got := r.ResolveAvatar(ctx, "s3://bucket/a.jpg"); got == nil || *got != "https://signed/ref/s3://bucket/a.jpg" {
		t.Fatalf("expected reference resolution, got %v", got)
	}
	if got := r.ResolveAvatar(ctx, "avatars/u1/a.jpg"); got == nil || *got != "https://signed/path/avatars/u1/a.jpg" {
		t.Fatalf("expected path resolution, got %v", got)
	}
	if got := r.ResolveAvatar(ctx, ""); got != nil {
		t.Fatalf("expected nil for empty avatar, got %v", *got)
	}
	if len(avatars.refs) != 1 || len(avatars.paths) != 1 {
		t.Fatalf("unexpected resolver calls refs=%v paths=%v", avatars.refs, avatars.paths)
	}
}

func TestResolveAvatarFailureYieldsNil(t *testing.T) {
	avatars := &fakeAvatars{failWith: errors.New("denied")}
	dir := &fakeDirectory{records: map[string]models.PlayerRecord{
		"u1": {UID: "u1", Name: "Ana", Avatar: "s3://bucket/a.jpg"},
		"u2": {UID: "u2", FullName: "Bo", AvatarURL: "avatars/u2.jpg"},
	}}
	r := newTestResolver(dir, avatars, nil)

	got := r.Resolve(context.Background(), []models.Match{{Players: []string{"u1", "u2"}}})

	if len(got[0].PlayerProfiles) != 2 {
		t.Fatalf("expected both profiles despite avatar failures, got %+v", got[0].PlayerProfiles)
	}
	for _, p := range got[0].PlayerProfiles {
		if p.Avatar != nil {
			t.Fatalf("expected nil avatar for %s", p.ID)
		}
	}
	if *got[0].PlayerProfiles[1].Name != "Bo" {
		t.Fatalf("expected fullName fallback, got %q", *got[0].PlayerProfiles[1].Name)
	}
}

func TestResolveBatchFailureKeepsCachedProfiles(t *testing.T) {
	c := cache.NewMemoryCache(0, 0)
	_ = c.Merge(context.Background(), map[string]models.PlayerProfile{"u1": {ID: "u1"}})
	dir := &fakeDirectory{err: errors.New("unavailable")}
	r := newTestResolver(dir, nil, c)

	got := r.Resolve(context.Background(), []models.Match{{Players: []string{"u1", "u2"}}})

	if len(got[0].PlayerProfiles) != 1 || got[0].PlayerProfiles[0].ID != "u1" {
		t.Fatalf("expected only the cached profile, got %+v", got[0].PlayerProfiles)
	}
}

func TestResolveDropsUnknownPlayers(t *testing.T) {
	dir := &fakeDirectory{records: recordsFor("u1")}
	r := newTestResolver(dir, nil, nil)

	got := r.ResolvePlayers(context.Background(), []string{"u1", "ghost", "u1"})
	if len(got) != 1 || got[0].ID != "u1" {
		t.Fatalf("expected only u1, got %+v", got)
	}
}

func TestResolvePresignsCachedAvatarsOnEveryPass(t *testing.T) {
	avatars := &fakeAvatars{}
	c := cache.NewMemoryCache(0, 0)
	dir := &fakeDirectory{records: map[string]models.PlayerRecord{
		"u1": {UID: "u1", Name: "Ana", Avatar: "avatars/u1.jpg"},
	}}
	r := newTestResolver(dir, avatars, c)
	matches := []models.Match{{Players: []string{"u1"}}}

	first := r.Resolve(context.Background(), matches)
	second := r.Resolve(context.Background(), matches)

	if len(dir.calls) != 1 {
		t.Fatalf("expected the directory to be read once, got %d", len(dir.calls))
	}
	if len(avatars.paths) != 2 {
		t.Fatalf("expected a fresh URL on each pass, got %d resolutions", len(avatars.paths))
	}
	for _, got := range [][]models.Match{first, second} {
		if a := got[0].PlayerProfiles[0].Avatar; a == nil || *a != "https://signed/path/avatars/u1.jpg" {
			t.Fatalf("expected presigned avatar, got %v", a)
		}
	}

	cached, _ := c.GetMany(context.Background(), []string{"u1"})
	if a := cached["u1"].Avatar; a == nil || *a != "avatars/u1.jpg" {
		t.Fatalf("expected the cache to keep the stored reference, got %v", a)
	}
}
