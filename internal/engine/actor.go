package engine

import (
	"fmt"
	"io"
	"log/slog"

	"scrabbled/internal/event"
	"scrabbled/internal/game"
	"scrabbled/internal/hub"
	"scrabbled/internal/player"
	"scrabbled/internal/protocol"
	"scrabbled/internal/store"
)

// gameActor owns one game's state, event log, and persistence, and
// processes every mutation on a single goroutine — the "single actor per
// game" shape the design notes recommend for a preemptively-threaded
// runtime. Distinct games run on distinct actors with no shared locking,
// so inter-game work proceeds in parallel; within a game, everything is
// strictly ordered by the inbox.
type gameActor struct {
	id       int
	state    *game.State
	events   []event.Event
	store    *store.Store
	registry *hub.Registry
	logger   *slog.Logger
	inbox    chan func()
}

func newGameActor(id int, st *store.Store, registry *hub.Registry, logger *slog.Logger) *gameActor {
	a := &gameActor{
		id:       id,
		state:    game.New(id),
		store:    st,
		registry: registry,
		logger:   logger.With("game_id", id),
		inbox:    make(chan func(), 128),
	}
	go a.run()
	return a
}

func (a *gameActor) run() {
	for fn := range a.inbox {
		fn()
	}
}

// do runs fn on the actor's own goroutine and blocks until it completes,
// giving callers synchronous request/response semantics for what is
// internally a single-threaded event loop.
func (a *gameActor) do(fn func()) {
	done := make(chan struct{})
	a.inbox <- func() {
		fn()
		close(done)
	}
	<-done
}

// applyAndPersist runs the reducer and, on success, appends to the
// in-memory log and rewrites the store. Must run on the actor goroutine.
func (a *gameActor) applyAndPersist(e event.Event) error {
	if err := a.state.Apply(e); err != nil {
		return err
	}
	a.events = append(a.events, e)
	if a.store != nil {
		if err := a.store.Save(a.id, a.events); err != nil {
			a.logger.Error("persist event failed", "error", err)
			return err
		}
	}
	return nil
}

func (a *gameActor) nextSequence() int {
	return a.state.LastSequence + 1
}

// handleConnect replays this game's full history to the joiner as
// APPROVED EVENT frames, then announces the join. Must run on the actor
// goroutine so no live event can be interleaved between replay and
// announce.
func (a *gameActor) handleConnect(key hub.Key, conn hub.Conn) {
	for _, e := range a.events {
		msg, err := protocol.NewEventMessage(e, protocol.StatusApproved, "")
		if err != nil {
			a.logger.Error("encode history event failed", "error", err)
			continue
		}
		if err := conn.Send(msg); err != nil {
			a.logger.Warn("send history event failed", "error", err)
			return
		}
	}
	if err := a.registry.AnnounceJoin(key); err != nil {
		a.logger.Warn("announce join failed", "error", err)
	}
}

// handleRequestedEvent validates and applies a client-submitted event.
// An invalid event gets a REJECTED reply to the submitter only; a valid
// one is broadcast APPROVED to the whole game, and — for a move that
// leaves the mover's hand short — followed by a bookkeeping refill event
// drawn from the pool and broadcast the same way.
func (a *gameActor) handleRequestedEvent(submitter string, e event.Event) {
	if err := a.applyAndPersist(e); err != nil {
		a.logger.Warn("rejected event", "error", err, "name", e.Name())
		if msg, encErr := protocol.NewEventMessage(e, protocol.StatusRejected, err.Error()); encErr == nil {
			_ = a.registry.SendTo(hub.Key{Username: submitter, GameID: a.id}, msg)
		}
		return
	}

	approved, err := protocol.NewEventMessage(e, protocol.StatusApproved, "")
	if err != nil {
		a.logger.Error("encode approved event failed", "error", err)
		return
	}
	a.registry.PublishToGame(a.id, approved, nil)

	move, ok := e.(event.PlayerMove)
	if !ok {
		return
	}
	a.refillIfNeeded(move)
}

func (a *gameActor) refillIfNeeded(move event.PlayerMove) {
	p, ok := a.state.PlayerByUsername(move.Player)
	if !ok {
		return
	}
	missing := player.MaxLetters - len(p.Letters)
	if missing <= 0 {
		return
	}
	if missing > len(a.state.Pool) {
		missing = len(a.state.Pool)
	}
	if missing == 0 {
		return
	}
	drawn := append([]rune(nil), a.state.Pool[:missing]...)

	refill := event.PlayerAddLetters{
		Common:  event.Common{Sequence: a.nextSequence(), GameID: a.id, Timestamp: move.Timestamp},
		Player:  move.Player,
		Letters: drawn,
	}
	if err := a.applyAndPersist(refill); err != nil {
		a.logger.Error("refill event rejected", "error", err)
		return
	}
	msg, err := protocol.NewEventMessage(refill, protocol.StatusApproved, "")
	if err != nil {
		a.logger.Error("encode refill event failed", "error", err)
		return
	}
	a.registry.PublishToGame(a.id, msg, nil)
}

// replay folds this game's persisted history through a scratch reducer
// and writes a line-oriented transcript to w, without touching the live
// state or the network.
func (a *gameActor) replay(w io.Writer) {
	fmt.Fprintf(w, "game %d: %d events\n", a.id, len(a.events))
	scratch := game.New(a.id)
	for i, e := range a.events {
		if err := scratch.Apply(e); err != nil {
			fmt.Fprintf(w, "  [%d] %s FAILED: %v\n", i, e.Name(), err)
			return
		}
		fmt.Fprintf(w, "  [%d] %s seq=%d\n", i, e.Name(), e.Meta().Sequence)
	}
	fmt.Fprintf(w, "final: last_sequence=%d started=%v\n", scratch.LastSequence, scratch.Turn != nil)
}

// dryRun applies candidate against a scratch copy of the current state
// without committing it, returning the score a PlayerMove would earn (0
// for other event kinds) or the validation error.
func (a *gameActor) dryRun(candidate event.Event) (int, error) {
	scratch := game.New(a.id)
	for _, e := range a.events {
		if err := scratch.Apply(e); err != nil {
			return 0, fmt.Errorf("engine: existing history invalid: %w", err)
		}
	}

	move, isMove := candidate.(event.PlayerMove)
	var before int
	if isMove {
		if p, ok := scratch.PlayerByUsername(move.Player); ok {
			before = p.Score
		}
	}

	if err := scratch.Apply(candidate); err != nil {
		return 0, err
	}
	if isMove {
		if p, ok := scratch.PlayerByUsername(move.Player); ok {
			return p.Score - before, nil
		}
	}
	return 0, nil
}
