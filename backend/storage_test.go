package main

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLeaderboardRecordAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	lb := NewLeaderboard(path)
	if err := lb.Load(); err != nil {
		t.Fatalf("load of missing file failed: %v", err)
	}
	if _, ok := lb.Best(); ok {
		t.Fatalf("fresh leaderboard has a best entry")
	}

	entries := []LeaderboardEntry{
		{Score: 1200, HighestTile: 128, Moves: 90, BoardSize: 4, PlayedAt: time.Now()},
		{Score: 5400, HighestTile: 512, Moves: 300, BoardSize: 4, Auto: true, PlayedAt: time.Now()},
		{Score: 300, HighestTile: 64, Moves: 40, BoardSize: 4, PlayedAt: time.Now()},
	}
	for _, entry := range entries {
		if err := lb.Record(entry); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	best, ok := lb.Best()
	if !ok || best.Score != 5400 {
		t.Fatalf("best = (%+v, %v)", best, ok)
	}

	reloaded := NewLeaderboard(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got := reloaded.Entries()
	if len(got) != 3 {
		t.Fatalf("reloaded %d entries, want 3", len(got))
	}
	if got[0].Score != 5400 || got[2].Score != 300 {
		t.Fatalf("entries not sorted by score: %+v", got)
	}
}

func TestLeaderboardTrimsToLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	lb := NewLeaderboard(path)
	for i := 0; i < leaderboardLimit+10; i++ {
		if err := lb.Record(LeaderboardEntry{Score: i, BoardSize: 4, PlayedAt: time.Now()}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	got := lb.Entries()
	if len(got) != leaderboardLimit {
		t.Fatalf("kept %d entries, want %d", len(got), leaderboardLimit)
	}
	if got[0].Score != leaderboardLimit+9 {
		t.Fatalf("top score = %d, want %d", got[0].Score, leaderboardLimit+9)
	}
}
