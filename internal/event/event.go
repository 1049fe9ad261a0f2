// Package event defines the tagged-variant events that make up a game's
// durable history, and their canonical wire schema.
package event

import (
	"scrabbled/internal/board"
)

// Name identifies an event's variant on the wire.
type Name string

const (
	NameGameInit         Name = "GAME_INIT"
	NameGameStart        Name = "GAME_START"
	NamePlayerAddLetters Name = "PLAYER_ADD_LETTERS"
	NamePlayerMove       Name = "PLAYER_MOVE"
)

// Common holds the fields every event carries regardless of variant.
type Common struct {
	Sequence  int
	GameID    int
	Timestamp int64
}

// Event is a single typed entry in a game's ordered history.
type Event interface {
	Name() Name
	Meta() Common
}

// GameInit seeds a new game: its players, the initial letter pool in
// draw order, and the board it will be played on.
type GameInit struct {
	Common
	Players []string
	Letters []rune
	Board   board.Settings
}

func (e GameInit) Name() Name   { return NameGameInit }
func (e GameInit) Meta() Common { return e.Common }

// GameStart marks a game as underway, optionally naming who moves first.
type GameStart struct {
	Common
	PlayerToStart *string
}

func (e GameStart) Name() Name   { return NameGameStart }
func (e GameStart) Meta() Common { return e.Common }

// PlayerAddLetters deals letters from the pool into a player's hand.
type PlayerAddLetters struct {
	Common
	Player  string
	Letters []rune
}

func (e PlayerAddLetters) Name() Name   { return NamePlayerAddLetters }
func (e PlayerAddLetters) Meta() Common { return e.Common }

// PlayerMove is a player's placement of one or more words, plus any
// letters exchanged back out of play in the same turn.
type PlayerMove struct {
	Common
	Player          string
	Words           board.BoardWords
	ExchangeLetters []rune
}

func (e PlayerMove) Name() Name   { return NamePlayerMove }
func (e PlayerMove) Meta() Common { return e.Common }
