package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const leaderboardLimit = 50

// LeaderboardEntry is one finished game.
type LeaderboardEntry struct {
	Score       int        `json:"score"`
	HighestTile int        `json:"highest_tile"`
	Moves       int        `json:"moves"`
	BoardSize   int        `json:"board_size"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	Auto        bool       `json:"auto"`
	PlayedAt    time.Time  `json:"played_at"`
}

// Leaderboard keeps the best finished games, persisted as a JSON file.
// Search state is never persisted; only results of play are.
type Leaderboard struct {
	mu      sync.Mutex
	path    string
	entries []LeaderboardEntry
}

func NewLeaderboard(path string) *Leaderboard {
	return &Leaderboard{path: path}
}

// Load reads the persisted entries. A missing file is a fresh start, not
// an error.
func (l *Leaderboard) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read leaderboard %s: %w", l.path, err)
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse leaderboard %s: %w", l.path, err)
	}
	l.entries = entries
	l.sortAndTrimLocked()
	return nil
}

// Record inserts a finished game and writes the file back. The write is
// atomic via a temp file rename so a crash cannot leave a torn file.
func (l *Leaderboard) Record(entry LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	l.sortAndTrimLocked()
	return l.saveLocked()
}

func (l *Leaderboard) sortAndTrimLocked() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Score > l.entries[j].Score
	})
	if len(l.entries) > leaderboardLimit {
		l.entries = l.entries[:leaderboardLimit]
	}
}

func (l *Leaderboard) saveLocked() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, "leaderboard-*.json")
	if err != nil {
		return fmt.Errorf("write leaderboard %s: %w", l.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write leaderboard %s: %w", l.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write leaderboard %s: %w", l.path, err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write leaderboard %s: %w", l.path, err)
	}
	return nil
}

func (l *Leaderboard) Entries() []LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LeaderboardEntry(nil), l.entries...)
}

func (l *Leaderboard) Best() (LeaderboardEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return LeaderboardEntry{}, false
	}
	return l.entries[0], true
}
