// Package store persists each game's event history as a JSON file and
// reloads it by replaying every event through a fresh reducer.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"scrabbled/internal/event"
	"scrabbled/internal/game"
)

// ErrGameNotFound is returned by Load when no file exists for the game.
var ErrGameNotFound = errors.New("store: game not found")

const fileSuffix = "_events.json"

// Store is an append-only per-game event log rooted at a directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(gameID int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d%s", gameID, fileSuffix))
}

// Save rewrites the full event list for gameID. The write goes to a
// temp file in the same directory and is then renamed into place, so a
// crash mid-write leaves the previous file intact rather than a
// half-written one (the whole-file-rewrite approach is still not a true
// append, but the rename makes each write atomic).
func (s *Store) Save(gameID int, events []event.Event) error {
	raw := make([]json.RawMessage, len(events))
	for i, e := range events {
		encoded, err := event.Marshal(e)
		if err != nil {
			return fmt.Errorf("store: marshal event %d: %w", i, err)
		}
		raw[i] = encoded
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal events: %w", err)
	}

	final := s.path(gameID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("store: rename into place: %w", err)
	}
	return nil
}

// Load reads every persisted event for gameID and returns them decoded,
// in order. It does not replay them; use Replay for that.
func (s *Store) Load(gameID int) ([]event.Event, error) {
	data, err := os.ReadFile(s.path(gameID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
		}
		return nil, fmt.Errorf("store: read: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("store: decode event list: %w", err)
	}

	events := make([]event.Event, len(raw))
	for i, r := range raw {
		e, err := event.Unmarshal(r)
		if err != nil {
			return nil, fmt.Errorf("store: decode event %d: %w", i, err)
		}
		events[i] = e
	}
	return events, nil
}

// Replay folds the given events through a fresh State for gameID. If
// any event fails to apply, the whole game fails to load: the returned
// error wraps the reducer's rejection and no partial state is returned.
func Replay(gameID int, events []event.Event) (*game.State, error) {
	st := game.New(gameID)
	for i, e := range events {
		if err := st.Apply(e); err != nil {
			return nil, fmt.Errorf("store: event %d failed to apply during replay: %w", i, err)
		}
	}
	return st, nil
}

// List enumerates the game ids with a persisted file in the store's
// directory.
func (s *Store) List() ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list dir: %w", err)
	}
	var ids []int
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		idStr := strings.TrimSuffix(name, fileSuffix)
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
