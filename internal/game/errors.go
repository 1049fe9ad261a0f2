package game

import "errors"

var (
	// ErrWrongGame is returned when an event's game_id doesn't match
	// this GameState.
	ErrWrongGame = errors.New("event belongs to a different game")

	// ErrSequenceMismatch is returned when an event's sequence number
	// isn't exactly one more than the last applied sequence.
	ErrSequenceMismatch = errors.New("event sequence is not contiguous")

	// ErrUnknownEvent is returned for an event type the reducer doesn't
	// recognize.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrAlreadyInitialized is returned for a second GameInit.
	ErrAlreadyInitialized = errors.New("game already initialized")

	// ErrNotInitialized is returned for any event that requires a
	// board before the board exists.
	ErrNotInitialized = errors.New("game not initialized")

	// ErrAlreadyStarted is returned for a second GameStart.
	ErrAlreadyStarted = errors.New("game already started")

	// ErrNotStarted is returned for a PlayerMove before GameStart.
	ErrNotStarted = errors.New("game not started")

	// ErrUnknownPlayer is returned for a player name not in the game.
	ErrUnknownPlayer = errors.New("unknown player")

	// ErrWrongTurn is returned when the moving player isn't the player
	// whose turn it is.
	ErrWrongTurn = errors.New("not this player's turn")

	// ErrHandSizeMismatch is returned when a PlayerAddLetters would not
	// bring the hand to exactly player.MaxLetters.
	ErrHandSizeMismatch = errors.New("add-letters would not fill hand to capacity")
)
