// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

// winnerIndex returns the index of the highest vote count. Ties go to the
// earliest index, so results are deterministic in stored option order. An
// all-zero tally still yields a winner (the first option) — explicit policy,
// not an error.
func winnerIndex(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}
