package board

// BoardWords is an ordered collection of BoardWord under the invariant
// that any two members sharing a position agree on its letter.
type BoardWords []BoardWord

// Add appends w after checking it against every existing member.
func (ws *BoardWords) Add(w BoardWord) error {
	for _, existing := range *ws {
		if _, err := existing.Intersection(w); err != nil {
			return err
		}
	}
	*ws = append(*ws, w)
	return nil
}

// LetterAt returns the first matching letter across all members; by the
// collection's invariant every member agrees, so the first hit wins.
func (ws BoardWords) LetterAt(p Position) (rune, bool) {
	for _, w := range ws {
		if r, ok := w.LetterAt(p); ok {
			return r, ok
		}
	}
	return 0, false
}

// Positions returns the union of every member's path.
func (ws BoardWords) Positions() map[Position]rune {
	letters := make(map[Position]rune)
	for _, w := range ws {
		for _, p := range w.Path() {
			r, _ := w.LetterAt(p)
			letters[p] = r
		}
	}
	return letters
}

// Intersection returns the positions shared between candidate and any
// member of ws, failing if the shared letters disagree.
func (ws BoardWords) Intersection(candidate BoardWord) (map[Position]rune, error) {
	shared := make(map[Position]rune)
	for _, w := range ws {
		part, err := w.Intersection(candidate)
		if err != nil {
			return nil, err
		}
		for p, r := range part {
			shared[p] = r
		}
	}
	return shared, nil
}

// IntersectsAny reports whether candidate shares a position with any
// member of ws.
func (ws BoardWords) IntersectsAny(candidate BoardWord) bool {
	shared, err := ws.Intersection(candidate)
	return err == nil && len(shared) > 0
}
