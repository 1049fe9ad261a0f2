package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrabbled/internal/board"
	"scrabbled/internal/event"
	"scrabbled/internal/store"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir)
	require.NoError(t, err)

	events := []event.Event{
		event.GameInit{Common: event.Common{Sequence: 1, GameID: 7}, Players: []string{"alice"}, Letters: []rune("ab"), Board: board.Settings{Width: 15, Height: 15}},
		event.GameStart{Common: event.Common{Sequence: 2, GameID: 7}},
	}
	require.NoError(t, s.Save(7, events))

	loaded, err := s.Load(7)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, event.NameGameInit, loaded[0].Name())
	assert.Equal(t, event.NameGameStart, loaded[1].Name())
}

func TestLoadMissingGameFails(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir)
	require.NoError(t, err)

	_, err = s.Load(404)
	assert.ErrorIs(t, err, store.ErrGameNotFound)
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir)
	require.NoError(t, err)

	events := []event.Event{
		event.GameInit{Common: event.Common{Sequence: 1, GameID: 1}, Players: []string{"alice"}, Board: board.Settings{Width: 15, Height: 15}},
	}
	require.NoError(t, s.Save(1, events))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1_events.json", entries[0].Name())
}

func TestSaveOverwritesPreviousContentAtomically(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir)
	require.NoError(t, err)

	first := []event.Event{
		event.GameInit{Common: event.Common{Sequence: 1, GameID: 1}, Players: []string{"alice"}, Board: board.Settings{Width: 15, Height: 15}},
	}
	require.NoError(t, s.Save(1, first))

	second := append(first, event.GameStart{Common: event.Common{Sequence: 2, GameID: 1}})
	require.NoError(t, s.Save(1, second))

	loaded, err := s.Load(1)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	// the rename must have replaced the file, not appended a sibling
	assert.NoFileExists(t, filepath.Join(dir, "1_events.json.tmp"))
}

func TestReplayFoldsEventsThroughFreshState(t *testing.T) {
	events := []event.Event{
		event.GameInit{Common: event.Common{Sequence: 1, GameID: 3}, Players: []string{"alice"}, Letters: []rune("ab"), Board: board.Settings{Width: 15, Height: 15}},
		event.GameStart{Common: event.Common{Sequence: 2, GameID: 3}},
	}
	st, err := store.Replay(3, events)
	require.NoError(t, err)
	assert.Equal(t, 2, st.LastSequence)
	assert.NotNil(t, st.CurrentPlayer())
}

func TestReplayFailsOnInvalidEvent(t *testing.T) {
	events := []event.Event{
		event.GameStart{Common: event.Common{Sequence: 1, GameID: 3}}, // board doesn't exist yet
	}
	_, err := store.Replay(3, events)
	assert.Error(t, err)
}

func TestListEnumeratesPersistedGameIDs(t *testing.T) {
	dir := t.TempDir()
	s, err := store.New(dir)
	require.NoError(t, err)

	for _, id := range []int{3, 1, 2} {
		require.NoError(t, s.Save(id, []event.Event{
			event.GameInit{Common: event.Common{Sequence: 1, GameID: id}, Players: []string{"alice"}, Board: board.Settings{Width: 15, Height: 15}},
		}))
	}

	ids, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)
}
