// Package game folds a per-game ordered event stream into the
// authoritative GameState: the reducer at the heart of the engine.
package game

import (
	"fmt"

	"scrabbled/internal/board"
	"scrabbled/internal/event"
	"scrabbled/internal/player"
)

// BonusForAllLettersUsed is added to a move's score when the player
// empties their hand in a single move (a "bingo").
const BonusForAllLettersUsed = 50

// State is the authoritative, incrementally-folded state of one game.
// It must only ever be advanced by Apply; re-folding from scratch
// mid-game is not supported and would violate the sequencing invariant.
type State struct {
	GameID       int
	Players      []*player.Player
	byUsername   map[string]*player.Player
	Turn         *int
	Pool         []rune
	LastSequence int
	Board        *board.Board
}

// New returns an empty State ready to receive a GameInit as its first
// event.
func New(gameID int) *State {
	return &State{GameID: gameID, byUsername: make(map[string]*player.Player)}
}

// PlayerByUsername looks up a player by username.
func (s *State) PlayerByUsername(username string) (*player.Player, bool) {
	p, ok := s.byUsername[username]
	return p, ok
}

// CurrentPlayer returns whose turn it is, or nil if the game hasn't
// started.
func (s *State) CurrentPlayer() *player.Player {
	if s.Turn == nil {
		return nil
	}
	return s.Players[*s.Turn]
}

// Apply is the reducer's sole entry point: it validates e's game id and
// sequence number, dispatches to the matching handler, and only advances
// LastSequence on success. Handlers validate every precondition before
// mutating anything, so a failed Apply never changes the state.
func (s *State) Apply(e event.Event) error {
	meta := e.Meta()
	if meta.GameID != s.GameID {
		return fmt.Errorf("%w: event game_id %d, state game_id %d", ErrWrongGame, meta.GameID, s.GameID)
	}
	if meta.Sequence != s.LastSequence+1 {
		return fmt.Errorf("%w: expected sequence %d, got %d", ErrSequenceMismatch, s.LastSequence+1, meta.Sequence)
	}

	var err error
	switch v := e.(type) {
	case event.GameInit:
		err = s.applyGameInit(v)
	case event.GameStart:
		err = s.applyGameStart(v)
	case event.PlayerAddLetters:
		err = s.applyPlayerAddLetters(v)
	case event.PlayerMove:
		err = s.applyPlayerMove(v)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownEvent, e)
	}
	if err != nil {
		return err
	}

	s.LastSequence = meta.Sequence
	return nil
}

func (s *State) applyGameInit(e event.GameInit) error {
	if s.Board != nil {
		return ErrAlreadyInitialized
	}
	b, err := board.New(e.Board)
	if err != nil {
		return err
	}

	players := make([]*player.Player, len(e.Players))
	byUsername := make(map[string]*player.Player, len(e.Players))
	for i, username := range e.Players {
		p := player.New(username)
		players[i] = p
		byUsername[username] = p
	}

	s.Board = b
	s.Players = players
	s.byUsername = byUsername
	s.Pool = append([]rune(nil), e.Letters...)
	return nil
}

func (s *State) applyGameStart(e event.GameStart) error {
	if s.Board == nil {
		return ErrNotInitialized
	}
	if s.Turn != nil {
		return ErrAlreadyStarted
	}

	idx := 0
	if e.PlayerToStart != nil {
		found := -1
		for i, p := range s.Players {
			if p.Username == *e.PlayerToStart {
				found = i
				break
			}
		}
		if found == -1 {
			return fmt.Errorf("%w: %s", ErrUnknownPlayer, *e.PlayerToStart)
		}
		idx = found
	}

	s.Turn = &idx
	return nil
}

func (s *State) applyPlayerAddLetters(e event.PlayerAddLetters) error {
	p, ok := s.byUsername[e.Player]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, e.Player)
	}
	if len(p.Letters)+len(e.Letters) != player.MaxLetters {
		return fmt.Errorf("%w: hand has %d, adding %d, want exactly %d", ErrHandSizeMismatch, len(p.Letters), len(e.Letters), player.MaxLetters)
	}

	pool := append([]rune(nil), s.Pool...)
	for _, c := range e.Letters {
		idx := -1
		for i, r := range pool {
			if r == c {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("letter %q not in pool", c)
		}
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	if err := p.AddLetters(e.Letters); err != nil {
		return err
	}
	s.Pool = pool
	return nil
}

func (s *State) applyPlayerMove(e event.PlayerMove) error {
	if s.Turn == nil {
		return ErrNotStarted
	}
	current := s.Players[*s.Turn]
	if current.Username != e.Player {
		return fmt.Errorf("%w: it is %s's turn, not %s", ErrWrongTurn, current.Username, e.Player)
	}

	played := s.Board.GetLettersToInsertWords(e.Words)
	spent := append(append([]rune(nil), played...), e.ExchangeLetters...)
	if !current.HasLetters(spent) {
		return player.ErrLetterNotInHand
	}

	score, err := s.Board.InsertWords(e.Words)
	if err != nil {
		return err
	}
	if len(played) == player.MaxLetters {
		score += BonusForAllLettersUsed
	}
	current.Score += score

	if err := current.RemoveLetters(spent); err != nil {
		// Unreachable: HasLetters already confirmed spent is available.
		return err
	}

	next := (*s.Turn + 1) % len(s.Players)
	s.Turn = &next
	return nil
}
