package letterbag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrabbled/internal/letterbag"
)

func dist() map[rune]int {
	return map[rune]int{'a': 9, 'b': 2, 'c': 2}
}

func TestNewProducesExactCount(t *testing.T) {
	b, err := letterbag.New(20, dist())
	require.NoError(t, err)
	assert.Equal(t, 20, b.Len())
}

func TestNewGuaranteesAtLeastOneOfEveryLetter(t *testing.T) {
	b, err := letterbag.New(3, dist())
	require.NoError(t, err)
	counts := map[rune]int{}
	for _, c := range b.Letters() {
		counts[c]++
	}
	for k := range dist() {
		assert.GreaterOrEqual(t, counts[k], 1)
	}
}

func TestNewRejectsNonPositiveWeight(t *testing.T) {
	_, err := letterbag.New(10, map[rune]int{'a': 0})
	assert.Error(t, err)
}

func TestNewRejectsTooFewLettersForDistinctKeys(t *testing.T) {
	_, err := letterbag.New(2, dist())
	assert.Error(t, err)
}

func TestDrawRemovesFromFront(t *testing.T) {
	b := letterbag.FromLetters([]rune{'a', 'b', 'c'})
	drawn, err := b.Draw(2)
	require.NoError(t, err)
	assert.Equal(t, []rune{'a', 'b'}, drawn)
	assert.Equal(t, 1, b.Len())
}

func TestDrawFailsWhenNotEnoughRemain(t *testing.T) {
	b := letterbag.FromLetters([]rune{'a'})
	_, err := b.Draw(5)
	assert.Error(t, err)
	assert.Equal(t, 1, b.Len()) // unchanged on failure
}

func TestRemoveDeletesOneInstancePreservingOrder(t *testing.T) {
	b := letterbag.FromLetters([]rune{'a', 'b', 'a'})
	require.NoError(t, b.Remove('a'))
	assert.Equal(t, []rune{'b', 'a'}, b.Letters())
}

func TestRemoveMissingLetterFails(t *testing.T) {
	b := letterbag.FromLetters([]rune{'a'})
	err := b.Remove('z')
	assert.ErrorIs(t, err, letterbag.ErrLetterNotFound)
}
