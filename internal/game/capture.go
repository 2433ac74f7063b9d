// internal/game/capture.go
package game

import "github.com/Micheles111/Final-ASE-Project/internal/cards"

// FindCapture returns the subset of the table captured by playing the given
// card, or nil when no subset sums to 15 minus the played value. Among all
// matching subsets the largest wins; ties go to the first combination in
// enumeration order, which walks index combinations of the table slice
// lexicographically. The table is an ordered slice and is never reordered,
// so the choice is deterministic for a given layout.
func FindCapture(played cards.Card, table []cards.Card) []cards.Card {
	target := 15 - cards.Value(played)
	if target <= 0 {
		return nil
	}
	for size := len(table); size >= 1; size-- {
		if combo := firstCombination(table, size, target); combo != nil {
			return combo
		}
	}
	return nil
}

// firstCombination returns the first size-card combination of the table,
// in lexicographic index order, whose values sum to target.
func firstCombination(table []cards.Card, size, target int) []cards.Card {
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	for {
		sum := 0
		for _, i := range idx {
			sum += cards.Value(table[i])
		}
		if sum == target {
			combo := make([]cards.Card, size)
			for j, i := range idx {
				combo[j] = table[i]
			}
			return combo
		}

		// Advance to the next combination.
		j := size - 1
		for j >= 0 && idx[j] == len(table)-size+j {
			j--
		}
		if j < 0 {
			return nil
		}
		idx[j]++
		for k := j + 1; k < size; k++ {
			idx[k] = idx[k-1] + 1
		}
	}
}
