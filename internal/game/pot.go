package game

import "slices"

// SidePot is one layer of the pot, capped at a per-player contribution level
type SidePot struct {
	Cap      int   `json:"cap"`
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"` // seats that may win this layer
}

// contribution is what one seat has put into the pot this hand
type contribution struct {
	seat   int // -1 for players who left the table
	total  int
	folded bool
}

// buildSidePots splits pot into layers. Cap levels are the distinct totals of the
// seats still in the hand; each layer collects every contribution (folded or not)
// between the previous cap and its own, and is contested by non-folded seats
// that reached the cap. Chips above the highest cap land in the top layer, so
// the layers always sum to pot.
func buildSidePots(contribs []contribution, pot int) []SidePot {
	var caps []int
	for _, c := range contribs {
		if !c.folded && !slices.Contains(caps, c.total) {
			caps = append(caps, c.total)
		}
	}
	if len(caps) == 0 {
		return nil
	}
	slices.Sort(caps)

	pots := make([]SidePot, 0, len(caps))
	prev, allocated := 0, 0
	var layer SidePot
	for _, level := range caps {
		layer = SidePot{Cap: level}
		for _, c := range contribs {
			layer.Amount += min(c.total, level) - min(c.total, prev)
			if !c.folded && c.total >= level {
				layer.Eligible = append(layer.Eligible, c.seat)
			}
		}
		allocated += layer.Amount
		prev = level
		if layer.Amount > 0 {
			pots = append(pots, layer)
		}
	}
	if len(pots) == 0 {
		if pot == 0 {
			return nil
		}
		pots = append(pots, layer)
	}
	pots[len(pots)-1].Amount += pot - allocated
	return pots
}

// MainPot returns the highest-cap layer, or false if there are no layers
func MainPot(pots []SidePot) (SidePot, bool) {
	if len(pots) == 0 {
		return SidePot{}, false
	}
	return pots[len(pots)-1], true
}

// splitPot divides amount between winners, who must already be ordered clockwise
// from the dealer; odd chips go one at a time from the front.
func splitPot(amount int, winners []int) map[int]int {
	shares := make(map[int]int, len(winners))
	if len(winners) == 0 {
		return shares
	}
	each := amount / len(winners)
	rem := amount % len(winners)
	for i, seat := range winners {
		shares[seat] = each
		if i < rem {
			shares[seat]++
		}
	}
	return shares
}
