package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, ok := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, prev)
		}
	})
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("S3_BUCKET_NAME", "courtmates-avatars")
	unsetEnv(t, "PORT")
	unsetEnv(t, "FEED_POLL_INTERVAL")
	unsetEnv(t, "FEED_HIDE_FULL")
	unsetEnv(t, "PROFILE_CACHE_MAX_ENTRIES")

	cfg, err := New()
	if err != nil {
		t.Fatalf("new config: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.AWS.UsersTable != "Users" || cfg.AWS.MatchesTable != "Matches" {
		t.Fatalf("unexpected table names: %+v", cfg.AWS)
	}
	if cfg.Feed.PollInterval != 5*time.Second {
		t.Fatalf("expected 5s poll interval, got %s", cfg.Feed.PollInterval)
	}
	if cfg.Feed.HideFull {
		t.Fatalf("expected full matches to be shown by default")
	}
	if cfg.Cache.MaxEntries != 1000 {
		t.Fatalf("expected 1000 cache entries, got %d", cfg.Cache.MaxEntries)
	}
}

func TestNewRequiresRegionAndBucket(t *testing.T) {
	unsetEnv(t, "AWS_REGION")
	unsetEnv(t, "S3_BUCKET_NAME")

	if _, err := New(); err == nil {
		t.Fatalf("expected error when required AWS settings are missing")
	}
}
