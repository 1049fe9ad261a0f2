// Package engine is the server engine: it orchestrates game lifecycle
// commands, drives the reducer for every client-submitted event, emits
// the bookkeeping refill events a move implies, and persists everything
// through the store.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"scrabbled/internal/board"
	"scrabbled/internal/event"
	"scrabbled/internal/game"
	"scrabbled/internal/hub"
	"scrabbled/internal/letterbag"
	"scrabbled/internal/protocol"
	"scrabbled/internal/store"
)

// ErrGameNotFound is returned by any operation on a game id the engine
// has no actor for.
var ErrGameNotFound = fmt.Errorf("engine: game not found")

// ErrAlreadyStarted is returned by StartGame for a game whose board is
// already set up.
var ErrAlreadyStarted = fmt.Errorf("engine: game already started")

// Engine is the single process-wide coordinator: one actor per loaded
// game, a shared connection registry, and the event store every actor
// persists through.
type Engine struct {
	mu         sync.Mutex
	actors     map[int]*gameActor
	nextGameID int

	store    *store.Store
	registry *hub.Registry
	logger   *slog.Logger
}

// New builds an Engine. st may be nil for a purely in-memory engine
// (used in tests); logger must not be nil.
func New(st *store.Store, logger *slog.Logger) *Engine {
	e := &Engine{
		actors:     make(map[int]*gameActor),
		nextGameID: 1,
		store:      st,
		logger:     logger,
	}
	e.registry = hub.NewRegistry(e.onNewConn, e.onEndConn)

	if st != nil {
		if ids, err := st.List(); err == nil {
			for _, id := range ids {
				if id >= e.nextGameID {
					e.nextGameID = id + 1
				}
			}
		}
	}
	return e
}

// Registry exposes the shared connection registry for the transport
// layer to register/unregister connections against.
func (e *Engine) Registry() *hub.Registry { return e.registry }

func (e *Engine) actor(gameID int) (*gameActor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.actors[gameID]
	return a, ok
}

func (e *Engine) onNewConn(key hub.Key) error {
	if _, ok := e.actor(key.GameID); !ok {
		return fmt.Errorf("%w: %d", ErrGameNotFound, key.GameID)
	}
	return nil
}

func (e *Engine) onEndConn(key hub.Key) {
	e.logger.Info("connection ended", "username", key.Username, "game_id", key.GameID)
}

// InitNewGame creates a fresh, empty game and returns its id.
func (e *Engine) InitNewGame() int {
	e.mu.Lock()
	id := e.nextGameID
	e.nextGameID++
	a := newGameActor(id, e.store, e.registry, e.logger)
	e.actors[id] = a
	e.mu.Unlock()

	e.logger.Info("game initialized", "game_id", id)
	return id
}

// LoadGame replays gameID's persisted events into a fresh actor. If any
// event fails to apply, the load is aborted entirely and no actor is
// registered for gameID.
func (e *Engine) LoadGame(gameID int) error {
	if e.store == nil {
		return fmt.Errorf("engine: no event store configured")
	}
	events, err := e.store.Load(gameID)
	if err != nil {
		return err
	}

	a := &gameActor{id: gameID, state: game.New(gameID), store: e.store, registry: e.registry, logger: e.logger.With("game_id", gameID), inbox: make(chan func(), 128)}
	for i, ev := range events {
		if err := a.state.Apply(ev); err != nil {
			return fmt.Errorf("engine: event %d failed to apply while loading game %d: %w", i, gameID, err)
		}
		a.events = append(a.events, ev)
	}
	go a.run()

	e.mu.Lock()
	e.actors[gameID] = a
	if gameID >= e.nextGameID {
		e.nextGameID = gameID + 1
	}
	e.mu.Unlock()

	e.logger.Info("game loaded", "game_id", gameID, "events", len(events))
	return nil
}

// LoadAllGames enumerates every persisted game id via the store and
// loads each one not already in memory, backing the operator CLI's
// argument-less "load" command. It returns the ids it loaded; a
// per-game load failure is logged and skipped rather than aborting the
// whole enumeration, since one corrupt game shouldn't block the rest
// from coming back online.
func (e *Engine) LoadAllGames() ([]int, error) {
	if e.store == nil {
		return nil, fmt.Errorf("engine: no event store configured")
	}
	ids, err := e.store.List()
	if err != nil {
		return nil, err
	}

	var loaded []int
	for _, id := range ids {
		if _, ok := e.actor(id); ok {
			continue
		}
		if err := e.LoadGame(id); err != nil {
			e.logger.Error("load game failed", "game_id", id, "error", err)
			continue
		}
		loaded = append(loaded, id)
	}
	return loaded, nil
}

// StartGame lays out a fresh board and deals hands to every player
// currently connected to gameID, then marks the game started. It
// refuses a game that doesn't exist yet or that already has a board.
func (e *Engine) StartGame(gameID int, initWord string) error {
	a, ok := e.actor(gameID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}

	players := e.registry.Members(gameID)
	if len(players) == 0 {
		return fmt.Errorf("engine: cannot start game %d with no connected players", gameID)
	}

	var settings board.Settings
	var bag *letterbag.Bag
	if initWord != "" {
		start := board.Position{X: (BoardWidth - len(initWord)) / 2, Y: BoardHeight / 2}
		w := board.BoardWord{Word: initWord, Start: start, Direction: board.Right}
		settings = board.Settings{Width: BoardWidth, Height: BoardHeight, InitWord: &w, Bonuses: defaultBonuses(BoardWidth, BoardHeight)}
	} else {
		settings = board.Settings{Width: BoardWidth, Height: BoardHeight, Bonuses: defaultBonuses(BoardWidth, BoardHeight)}
	}

	var startErr error
	a.do(func() {
		if a.state.Board != nil {
			startErr = fmt.Errorf("%w: %d", ErrAlreadyStarted, gameID)
			return
		}

		var bagErr error
		bag, bagErr = letterbag.New(TotalLetters, EnglishLetterDistribution)
		if bagErr != nil {
			startErr = bagErr
			return
		}

		seq := 1
		init := event.GameInit{
			Common:  event.Common{Sequence: seq, GameID: gameID, Timestamp: 0},
			Players: players,
			Letters: bag.Letters(),
			Board:   settings,
		}
		if err := a.applyAndPersist(init); err != nil {
			startErr = err
			return
		}
		e.broadcastApproved(a, init)
		seq++

		for _, name := range players {
			n := 7
			if n > len(a.state.Pool) {
				n = len(a.state.Pool)
			}
			drawn := append([]rune(nil), a.state.Pool[:n]...)
			addLetters := event.PlayerAddLetters{
				Common:  event.Common{Sequence: seq, GameID: gameID, Timestamp: 0},
				Player:  name,
				Letters: drawn,
			}
			if err := a.applyAndPersist(addLetters); err != nil {
				startErr = err
				return
			}
			e.broadcastApproved(a, addLetters)
			seq++
		}

		first := players[0]
		start := event.GameStart{
			Common:        event.Common{Sequence: seq, GameID: gameID, Timestamp: 0},
			PlayerToStart: &first,
		}
		if err := a.applyAndPersist(start); err != nil {
			startErr = err
			return
		}
		e.broadcastApproved(a, start)
	})
	if startErr != nil {
		return startErr
	}

	e.logger.Info("game started", "game_id", gameID, "players", players, "init_word", initWord)
	return nil
}

func (e *Engine) broadcastApproved(a *gameActor, ev event.Event) {
	msg, err := protocol.NewEventMessage(ev, protocol.StatusApproved, "")
	if err != nil {
		a.logger.Error("encode approved event failed", "error", err)
		return
	}
	a.registry.PublishToGame(a.id, msg, nil)
}

// Connect runs the authenticated-join flow for a new connection: the
// registry's duplicate-key and game-existence checks, then — only on
// success — history replay followed by the join announcement, both
// performed on the game's own actor goroutine so no live event can be
// interleaved into the replay.
func (e *Engine) Connect(username string, gameID int, conn hub.Conn) error {
	key := hub.Key{Username: username, GameID: gameID}
	if err := e.registry.Register(key, conn); err != nil {
		return err
	}

	a, ok := e.actor(gameID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	a.do(func() {
		a.handleConnect(key, conn)
	})
	return nil
}

// SubmitEvent validates and applies a client-submitted REQUESTED event
// on gameID's actor, broadcasting the approval and any resulting refill
// to the game, or sending the rejection to the submitter only.
func (e *Engine) SubmitEvent(gameID int, submitter string, ev event.Event) error {
	a, ok := e.actor(gameID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	a.do(func() {
		a.handleRequestedEvent(submitter, ev)
	})
	return nil
}

// Replay writes a transcript of gameID's persisted history to w without
// touching live state.
func (e *Engine) Replay(gameID int, w io.Writer) error {
	a, ok := e.actor(gameID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	a.do(func() {
		a.replay(w)
	})
	return nil
}

// DryRun validates candidate against a scratch copy of gameID's state
// without committing it, returning the score it would earn.
func (e *Engine) DryRun(gameID int, candidate event.Event) (int, error) {
	a, ok := e.actor(gameID)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	var score int
	var err error
	a.do(func() {
		score, err = a.dryRun(candidate)
	})
	return score, err
}

// Disconnect force-closes username's connection to gameID, which drives
// the transport's read loop to exit and call Unregister itself.
func (e *Engine) Disconnect(username string, gameID int) error {
	return e.registry.Disconnect(hub.Key{Username: username, GameID: gameID})
}

// Unregister removes username's connection to gameID from the registry
// and announces its departure. The transport layer calls this once its
// read loop exits for any reason (client close, network error, or a
// prior call to Disconnect).
func (e *Engine) Unregister(username string, gameID int) {
	e.registry.Unregister(hub.Key{Username: username, GameID: gameID})
}

// GameSummary is the read-only view the admin HTTP surface exposes.
type GameSummary struct {
	GameID       int      `json:"game_id"`
	Players      []string `json:"players"`
	Scores       []int    `json:"scores"`
	HandSizes    []int    `json:"hand_sizes"`
	PoolSize     int      `json:"pool_size"`
	Started      bool     `json:"started"`
	Turn         *int     `json:"turn,omitempty"`
	LastSequence int      `json:"last_sequence"`
}

// Summary returns a read-only snapshot of gameID, never exposing hand
// contents — only their size.
func (e *Engine) Summary(gameID int) (GameSummary, error) {
	a, ok := e.actor(gameID)
	if !ok {
		return GameSummary{}, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	var s GameSummary
	a.do(func() {
		s = GameSummary{GameID: gameID, LastSequence: a.state.LastSequence, Started: a.state.Turn != nil}
		if a.state.Turn != nil {
			turn := *a.state.Turn
			s.Turn = &turn
		}
		if a.state.Board != nil {
			s.PoolSize = len(a.state.Pool)
		}
		for _, p := range a.state.Players {
			s.Players = append(s.Players, p.Username)
			s.Scores = append(s.Scores, p.Score)
			s.HandSizes = append(s.HandSizes, len(p.Letters))
		}
	})
	return s, nil
}

// GameIDs returns every currently-loaded game id.
func (e *Engine) GameIDs() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]int, 0, len(e.actors))
	for id := range e.actors {
		ids = append(ids, id)
	}
	return ids
}
