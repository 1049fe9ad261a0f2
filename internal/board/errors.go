package board

import "errors"

var (
	// ErrOutOfBounds is returned when a position or word path falls
	// outside the board's width/height.
	ErrOutOfBounds = errors.New("position is out of bounds")

	// ErrWordIntersection covers every way two words, or a word and
	// the board, disagree about a shared square: conflicting letters,
	// a wholly redundant placement, or a placement that doesn't touch
	// anything already on the board.
	ErrWordIntersection = errors.New("word intersection conflict")

	// ErrEmptyWord is returned for a BoardWord with no letters.
	ErrEmptyWord = errors.New("word must not be empty")

	// ErrNoWordsToInsert is returned when InsertWords is called with
	// no candidates.
	ErrNoWordsToInsert = errors.New("no words to insert")
)
