package board

import "fmt"

// Minimum board dimensions; the spec leaves the exact values open, these
// are small enough to host a two-letter init word with room to grow.
const (
	MinWidth  = 5
	MinHeight = 5
)

// Bonus is a board square whose word-score multiplier exceeds 1.
type Bonus struct {
	Position   Position
	Multiplier int
}

// Settings describes a board's static shape: its size, an optional word
// placed at creation time, and its bonus squares.
type Settings struct {
	Width, Height int
	InitWord      *BoardWord
	Bonuses       []Bonus
}

// Validate checks the invariants from the data model: in-bounds
// dimensions, in-bounds bonuses, and an in-bounds init word.
func (s Settings) Validate() error {
	if s.Width < MinWidth || s.Height < MinHeight {
		return fmt.Errorf("%w: board must be at least %dx%d", ErrOutOfBounds, MinWidth, MinHeight)
	}
	for _, b := range s.Bonuses {
		if !b.Position.inBounds(s.Width, s.Height) {
			return fmt.Errorf("%w: bonus at %v", ErrOutOfBounds, b.Position)
		}
		if b.Multiplier < 1 {
			return fmt.Errorf("%w: bonus multiplier must be >= 1", ErrOutOfBounds)
		}
	}
	if s.InitWord != nil {
		if err := s.InitWord.validate(s.Width, s.Height); err != nil {
			return err
		}
	}
	return nil
}

// Board is a Settings plus the accumulating set of placed words.
type Board struct {
	Settings    Settings
	Words       BoardWords
	multipliers map[Position]int
}

// New constructs a Board from settings, validating them and placing the
// optional init word. An invalid init word placement is a programming
// error in the settings, not a user-submitted move, so it still surfaces
// as a regular error for the caller (GameInit handling) to reject.
func New(settings Settings) (*Board, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	mult := make(map[Position]int, len(settings.Bonuses))
	for _, b := range settings.Bonuses {
		mult[b.Position] = b.Multiplier
	}
	b := &Board{Settings: settings, multipliers: mult}
	if settings.InitWord != nil {
		if _, err := b.InsertWords([]BoardWord{*settings.InitWord}); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// checkPlacement validates rules 1-2 of the placement rules for a single
// candidate against the board as it stands: in-bounds, and no letter
// conflicts with whatever is already on the board.
func (b *Board) checkPlacement(w BoardWord) error {
	if err := w.validate(b.Settings.Width, b.Settings.Height); err != nil {
		return err
	}
	for _, p := range w.Path() {
		want, _ := w.LetterAt(p)
		if have, ok := b.Words.LetterAt(p); ok && have != want {
			return ErrWordIntersection
		}
	}
	return nil
}

// GetLettersToInsertWords returns the multiset of letters at positions
// covered by candidates that are not already on the board — what the
// moving player must spend from their hand.
func (b *Board) GetLettersToInsertWords(candidates []BoardWord) []rune {
	seen := make(map[Position]bool)
	var letters []rune
	for _, w := range candidates {
		for _, p := range w.Path() {
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, onBoard := b.Words.LetterAt(p); onBoard {
				continue
			}
			r, _ := w.LetterAt(p)
			letters = append(letters, r)
		}
	}
	return letters
}

// InsertWords atomically places a set of candidate words and returns the
// total score of the move. It proves placability by validating the union
// of candidate paths up front rather than committing candidates one at a
// time in an arbitrary, possibly rejecting, order.
func (b *Board) InsertWords(candidates []BoardWord) (int, error) {
	if len(candidates) == 0 {
		return 0, ErrNoWordsToInsert
	}

	// Rule 1-2: every candidate must be in-bounds and letter-consistent
	// with the board as it currently stands.
	for _, w := range candidates {
		if err := b.checkPlacement(w); err != nil {
			return 0, err
		}
	}

	// Candidates must be mutually letter-consistent with each other.
	var pending BoardWords
	for _, w := range candidates {
		if err := pending.Add(w); err != nil {
			return 0, err
		}
	}

	newPositions := make(map[Position]bool)
	for _, w := range candidates {
		for _, p := range w.Path() {
			if _, onBoard := b.Words.LetterAt(p); !onBoard {
				newPositions[p] = true
			}
		}
	}
	// Rule 3: the move must add at least one new letter somewhere.
	if len(newPositions) == 0 {
		return 0, fmt.Errorf("%w: placement is wholly redundant", ErrWordIntersection)
	}

	// Rule 4: every candidate must be reachable from the existing board
	// through a chain of intersections, with either the existing board
	// or (on an empty board) an arbitrarily chosen first candidate as
	// the seed. Computed as a fixed point over the whole candidate set
	// rather than by committing candidates one at a time, so the order
	// candidates happen to be listed in can never reject a placement
	// that a different order would have accepted.
	boardHasWords := len(b.Words) > 0
	anchored := make([]bool, len(candidates))
	if boardHasWords {
		for i, w := range candidates {
			if b.Words.IntersectsAny(w) {
				anchored[i] = true
			}
		}
	} else {
		anchored[0] = true
	}
	for changed := true; changed; {
		changed = false
		for i, w := range candidates {
			if anchored[i] {
				continue
			}
			for j, other := range candidates {
				if i == j || !anchored[j] {
					continue
				}
				if w.Intersects(other) {
					anchored[i] = true
					changed = true
					break
				}
			}
		}
	}
	for _, ok := range anchored {
		if !ok {
			return 0, fmt.Errorf("%w: must intersect existing board", ErrWordIntersection)
		}
	}

	score := 0
	for _, w := range candidates {
		score += b.scoreWord(w)
	}

	for _, w := range candidates {
		if err := b.Words.Add(w); err != nil {
			return 0, err
		}
	}

	return score, nil
}

// scoreWord computes one word's score: length times the sum of bonus
// multipliers it covers (or 1 if it covers none).
func (b *Board) scoreWord(w BoardWord) int {
	multiplier := 0
	for _, p := range w.Path() {
		if m, ok := b.multipliers[p]; ok && m > 1 {
			multiplier += m
		}
	}
	if multiplier == 0 {
		multiplier = 1
	}
	return len([]rune(w.Word)) * multiplier
}
