package board

// BoardWord is one word placed on the board: its letters, where it
// starts, and which way it reads.
type BoardWord struct {
	Word      string
	Start     Position
	Direction Direction
}

// Path returns the ordered, distinct positions the word covers.
func (w BoardWord) Path() []Position {
	step := w.Direction.step()
	runes := []rune(w.Word)
	path := make([]Position, len(runes))
	pos := w.Start
	for i := range runes {
		path[i] = pos
		pos = Position{X: pos.X + step.X, Y: pos.Y + step.Y}
	}
	return path
}

// LetterAt returns the letter w places at p, and whether p is on w's path.
func (w BoardWord) LetterAt(p Position) (rune, bool) {
	step := w.Direction.step()
	pos := w.Start
	for _, r := range w.Word {
		if pos == p {
			return r, true
		}
		pos = Position{X: pos.X + step.X, Y: pos.Y + step.Y}
	}
	return 0, false
}

// validate checks the word is non-empty and fully on a width x height board.
func (w BoardWord) validate(width, height int) error {
	if len(w.Word) == 0 {
		return ErrEmptyWord
	}
	for _, p := range w.Path() {
		if !p.inBounds(width, height) {
			return ErrOutOfBounds
		}
	}
	return nil
}

// Intersection returns the positions w shares with other, keyed to their
// common letter. It fails if any shared position carries a different
// letter in each word.
func (w BoardWord) Intersection(other BoardWord) (map[Position]rune, error) {
	shared := make(map[Position]rune)
	for _, p := range w.Path() {
		a, _ := w.LetterAt(p)
		if b, ok := other.LetterAt(p); ok {
			if a != b {
				return nil, ErrWordIntersection
			}
			shared[p] = a
		}
	}
	return shared, nil
}

// Intersects reports whether w and other share any position.
func (w BoardWord) Intersects(other BoardWord) bool {
	shared, err := w.Intersection(other)
	return err == nil && len(shared) > 0
}
