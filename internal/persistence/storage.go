package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"domination-engine/internal/models"
)

const (
	DefaultDataDir         = "data/domination/"
	DefaultLeaderboardFile = "leaderboard.json"
	DefaultLeaderboardDB   = "leaderboard.db"
	DefaultTopN            = 10
)

// Store keeps finished-session leaderboard entries.
type Store interface {
	Save(ctx context.Context, entry models.LeaderboardEntry) error
	List(ctx context.Context) ([]models.LeaderboardEntry, error)
	Close() error
}

// OpenStore opens the backend named by kind, "json" or "sqlite". An empty
// path selects the default file under DefaultDataDir.
func OpenStore(kind, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "json":
		if path == "" {
			path = filepath.Join(DefaultDataDir, DefaultLeaderboardFile)
		}
		return NewJSONFileStore(path)
	case "sqlite":
		if path == "" {
			path = filepath.Join(DefaultDataDir, DefaultLeaderboardDB)
		}
		return OpenSQLiteStore(path)
	}
	return nil, fmt.Errorf("unknown leaderboard store %q", kind)
}

// Period selects the window a leaderboard is ranked over.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodAllTime Period = "alltime"
)

// ParsePeriod maps a flag value to a Period. Unknown values mean all time.
func ParsePeriod(s string) Period {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodDaily:
		return PeriodDaily
	case PeriodWeekly:
		return PeriodWeekly
	}
	return PeriodAllTime
}

var placeholderName = regexp.MustCompile(`(?i)^\s*(bot|ai|cpu|guest|test|player|anonymous)([-_ ]?\d+)?\s*$`)

// IsPlaceholderName reports whether name looks like a bot or a throwaway name.
func IsPlaceholderName(name string) bool {
	return strings.TrimSpace(name) == "" || placeholderName.MatchString(name)
}

// FilterPlaceholderNames drops entries whose player name is a placeholder.
func FilterPlaceholderNames(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	out := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if !IsPlaceholderName(e.Player) {
			out = append(out, e)
		}
	}
	return out
}

// Rank returns the top n entries of the period ending at now, highest score
// first. Ties keep the earlier entry first.
func Rank(entries []models.LeaderboardEntry, period Period, now time.Time, n int) []models.LeaderboardEntry {
	var since time.Time
	switch period {
	case PeriodDaily:
		since = now.Add(-24 * time.Hour)
	case PeriodWeekly:
		since = now.Add(-7 * 24 * time.Hour)
	}
	out := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if !since.IsZero() && !e.Timestamp.After(since) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// JSONFileStore keeps the leaderboard as one indented JSON array on disk.
type JSONFileStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileStore creates the parent directory of path if needed.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	if path == "" {
		path = filepath.Join(DefaultDataDir, DefaultLeaderboardFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create leaderboard dir: %w", err)
	}
	return &JSONFileStore{path: path}, nil
}

func (s *JSONFileStore) load() ([]models.LeaderboardEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var entries []models.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return entries, nil
}

// Save appends entry and rewrites the file.
func (s *JSONFileStore) Save(_ context.Context, entry models.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// List returns every stored entry in insertion order.
func (s *JSONFileStore) List(_ context.Context) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONFileStore) Close() error { return nil }

// Leaderboard loads, filters and ranks the entries of store.
func Leaderboard(ctx context.Context, store Store, period Period, now time.Time) ([]models.LeaderboardEntry, error) {
	entries, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(FilterPlaceholderNames(entries), period, now, DefaultTopN), nil
}
