package engine

import "scrabbled/internal/board"

// BoardWidth and BoardHeight are the dimensions start_game lays out,
// matching the classic Scrabble board.
const (
	BoardWidth  = 15
	BoardHeight = 15
)

// TotalLetters is the size of the letter pool start_game deals from.
const TotalLetters = 100

// EnglishLetterDistribution is the relative draw weight of each letter,
// carried over from the teacher's tile-count table with the blank tile
// dropped (this design has no blank-tile mechanic).
var EnglishLetterDistribution = map[rune]int{
	'a': 9, 'b': 2, 'c': 2, 'd': 3, 'e': 15,
	'f': 2, 'g': 2, 'h': 2, 'i': 8, 'j': 1,
	'k': 1, 'l': 5, 'm': 3, 'n': 6, 'o': 6,
	'p': 2, 'q': 1, 'r': 6, 's': 6, 't': 6,
	'u': 6, 'v': 2, 'w': 1, 'x': 1, 'y': 1, 'z': 1,
}

// bonusSeed is one corner-quadrant bonus; defaultBonuses mirrors it into
// all four quadrants of the board.
type bonusSeed struct {
	x, y, multiplier int
}

// defaultBonusSeeds mirrors the origin's start-game layout: a triple-word
// bonus near each corner and a double-word bonus a little further in,
// each one mirrored into all four quadrants.
var defaultBonusSeeds = []bonusSeed{
	{3, 3, 3},
	{5, 5, 2},
}

func defaultBonuses(width, height int) []board.Bonus {
	var bonuses []board.Bonus
	for _, seed := range defaultBonusSeeds {
		positions := [4]board.Position{
			{X: seed.x, Y: seed.y},
			{X: seed.x, Y: height - 1 - seed.y},
			{X: width - 1 - seed.x, Y: height - 1 - seed.y},
			{X: width - 1 - seed.x, Y: seed.y},
		}
		for _, p := range positions {
			bonuses = append(bonuses, board.Bonus{Position: p, Multiplier: seed.multiplier})
		}
	}
	return bonuses
}
