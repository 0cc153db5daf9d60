package poker

import (
	"slices"
	"strings"
)

// Category enumerates the poker hand categories ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = [...]string{
	HighCard:      "high_card",
	Pair:          "pair",
	TwoPair:       "two_pair",
	ThreeOfAKind:  "three_of_a_kind",
	Straight:      "straight",
	Flush:         "flush",
	FullHouse:     "full_house",
	FourOfAKind:   "four_of_a_kind",
	StraightFlush: "straight_flush",
	RoyalFlush:    "royal_flush",
}

func (c Category) String() string {
	if c >= HighCard && c <= RoyalFlush {
		return categoryNames[c]
	}
	return "unknown"
}

// MarshalText encodes the category as its snake_case name
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Evaluation is the strength of a hand: its category plus the tiebreak values of
// the best five cards ordered by significance (grouped ranks first, then kickers).
// A wheel straight is ranked five-high.
type Evaluation struct {
	Category Category `json:"category"`
	Cards    []Card   `json:"cards"`
	Values   []int    `json:"-"`
}

// String describes the evaluation, e.g. "full_house [K K K 2 2]"
func (e Evaluation) String() string {
	labels := make([]string, len(e.Cards))
	for i, c := range e.Cards {
		labels[i] = c.String()
	}
	return e.Category.String() + " [" + strings.Join(labels, " ") + "]"
}

// Evaluate ranks the best five-card hand available from hole and community cards.
// With fewer than five cards it returns a pocket pair or high card estimate.
func Evaluate(hole, community []Card) Evaluation {
	all := make([]Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)

	if len(all) < 5 {
		return estimate(hole, all)
	}

	var best Evaluation
	var five [5]Card
	n := len(all)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five = [5]Card{all[a], all[b], all[c], all[d], all[e]}
						ev := evaluateFive(five)
						if best.Category == 0 || Compare(ev, best) > 0 {
							best = ev
						}
					}
				}
			}
		}
	}
	return best
}

// Compare returns 1 if a beats b, -1 if b beats a and 0 for an exact tie
func Compare(a, b Evaluation) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}
	return slices.Compare(a.Values, b.Values)
}

func estimate(hole, all []Card) Evaluation {
	sorted := sortByValue(all)
	if len(hole) == 2 && hole[0].Rank() == hole[1].Rank() {
		pair := []Card{hole[0], hole[1]}
		rest := make([]Card, 0, len(sorted))
		for _, c := range sorted {
			if c != hole[0] && c != hole[1] {
				rest = append(rest, c)
			}
		}
		cards := append(pair, rest...)
		return Evaluation{Category: Pair, Cards: cards, Values: values(cards)}
	}
	return Evaluation{Category: HighCard, Cards: sorted, Values: values(sorted)}
}

func evaluateFive(five [5]Card) Evaluation {
	cards := sortByValue(five[:])

	flush := true
	for _, c := range cards[1:] {
		if c.Suit() != cards[0].Suit() {
			flush = false
			break
		}
	}

	straightHigh := straightHighValue(cards)
	if straightHigh > 0 {
		ordered := cards
		vals := values(cards)
		if straightHigh == 5 {
			// Wheel: the ace plays low
			ordered = append(slices.Clone(cards[1:]), cards[0])
			vals = []int{5, 4, 3, 2, 1}
		}
		category := Straight
		if flush {
			category = StraightFlush
			if straightHigh == int(Ace) {
				category = RoyalFlush
			}
		}
		return Evaluation{Category: category, Cards: ordered, Values: vals}
	}

	grouped := groupBySignificance(cards)
	counts := groupCounts(grouped)

	var category Category
	switch {
	case counts[0] == 4:
		category = FourOfAKind
	case counts[0] == 3 && counts[1] == 2:
		category = FullHouse
	case flush:
		category = Flush
	case counts[0] == 3:
		category = ThreeOfAKind
	case counts[0] == 2 && counts[1] == 2:
		category = TwoPair
	case counts[0] == 2:
		category = Pair
	default:
		category = HighCard
	}
	return Evaluation{Category: category, Cards: grouped, Values: values(grouped)}
}

// straightHighValue returns the top value of a straight in cards (sorted
// descending), 5 for the wheel, or 0 when there is no straight.
func straightHighValue(cards []Card) int {
	for i := 1; i < len(cards); i++ {
		if cards[i].Value() == cards[i-1].Value() {
			return 0
		}
	}
	if cards[0].Value()-cards[4].Value() == 4 {
		return cards[0].Value()
	}
	if cards[0].Rank() == Ace && cards[1].Rank() == Five && cards[4].Rank() == Two {
		return 5
	}
	return 0
}

// groupBySignificance orders cards by rank multiplicity, then by value, both descending
func groupBySignificance(cards []Card) []Card {
	count := make(map[Rank]int, len(cards))
	for _, c := range cards {
		count[c.Rank()]++
	}
	out := slices.Clone(cards)
	slices.SortStableFunc(out, func(a, b Card) int {
		if ca, cb := count[a.Rank()], count[b.Rank()]; ca != cb {
			return cb - ca
		}
		if a.Value() != b.Value() {
			return b.Value() - a.Value()
		}
		return int(a.Suit()) - int(b.Suit())
	})
	return out
}

func groupCounts(grouped []Card) []int {
	counts := make([]int, 0, len(grouped))
	for i := 0; i < len(grouped); {
		j := i
		for j < len(grouped) && grouped[j].Rank() == grouped[i].Rank() {
			j++
		}
		counts = append(counts, j-i)
		i = j
	}
	for len(counts) < 2 {
		counts = append(counts, 0)
	}
	return counts
}

func sortByValue(cards []Card) []Card {
	out := slices.Clone(cards)
	slices.SortStableFunc(out, func(a, b Card) int {
		if a.Value() != b.Value() {
			return b.Value() - a.Value()
		}
		return int(a.Suit()) - int(b.Suit())
	})
	return out
}

func values(cards []Card) []int {
	vals := make([]int, len(cards))
	for i, c := range cards {
		vals[i] = c.Value()
	}
	return vals
}
