// Package letterbag builds the deterministic initial letter pool dealt
// out at the start of a game.
package letterbag

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrLetterNotFound is returned by Remove when the requested letter
// isn't present.
var ErrLetterNotFound = errors.New("letter not in bag")

// Bag is the ordered multiset of letters still to be dealt. It is
// shuffled once at construction; order thereafter reflects only removal.
type Bag struct {
	letters []rune
}

// New builds a bag of exactly count letters from a weighted distribution,
// per the data model's draw algorithm: each key starts with one
// guaranteed copy, then gets round(weight * (count-keys) / totalWeight)
// more, then any remaining shortfall is topped up from the
// highest-weight keys down, and the whole thing is shuffled.
func New(count int, distribution map[rune]int) (*Bag, error) {
	if len(distribution) == 0 {
		return nil, fmt.Errorf("letterbag: distribution must not be empty")
	}
	if len(distribution) > count {
		return nil, fmt.Errorf("letterbag: count %d too small for %d distinct letters", count, len(distribution))
	}

	totalWeight := 0
	for k, w := range distribution {
		if w <= 0 {
			return nil, fmt.Errorf("letterbag: weight for %q must be positive", k)
		}
		totalWeight += w
	}

	keys := make([]rune, 0, len(distribution))
	for k := range distribution {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if distribution[keys[i]] != distribution[keys[j]] {
			return distribution[keys[i]] > distribution[keys[j]]
		}
		return keys[i] < keys[j]
	})

	counts := make(map[rune]int, len(keys))
	total := len(keys) // one guaranteed copy each
	remaining := count - len(keys)
	for _, k := range keys {
		counts[k] = 1
		extra := int(float64(distribution[k])*float64(remaining)/float64(totalWeight) + 0.5)
		counts[k] += extra
		total += extra
	}

	// Top up or trim any rounding drift, richest keys first.
	for i := 0; total != count; i = (i + 1) % len(keys) {
		k := keys[i]
		if total < count {
			counts[k]++
			total++
		} else if counts[k] > 1 {
			counts[k]--
			total--
		}
	}

	letters := make([]rune, 0, count)
	for _, k := range keys {
		for i := 0; i < counts[k]; i++ {
			letters = append(letters, k)
		}
	}

	rand.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})

	return &Bag{letters: letters}, nil
}

// FromLetters wraps an already-determined letter sequence, e.g. one
// reloaded verbatim from a persisted GameInit event.
func FromLetters(letters []rune) *Bag {
	cp := make([]rune, len(letters))
	copy(cp, letters)
	return &Bag{letters: cp}
}

// Len reports how many letters remain.
func (b *Bag) Len() int { return len(b.letters) }

// Letters returns a copy of the remaining letters in their current order.
func (b *Bag) Letters() []rune {
	cp := make([]rune, len(b.letters))
	copy(cp, b.letters)
	return cp
}

// Draw removes and returns the first n letters in bag order. It fails,
// leaving the bag unchanged, if fewer than n remain.
func (b *Bag) Draw(n int) ([]rune, error) {
	if n > len(b.letters) {
		return nil, fmt.Errorf("letterbag: cannot draw %d letters, only %d remain", n, len(b.letters))
	}
	drawn := make([]rune, n)
	copy(drawn, b.letters[:n])
	b.letters = b.letters[n:]
	return drawn, nil
}

// Remove removes one instance of c from anywhere in the bag, preserving
// the order of the rest.
func (b *Bag) Remove(c rune) error {
	for i, r := range b.letters {
		if r == c {
			b.letters = append(b.letters[:i], b.letters[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrLetterNotFound, c)
}
