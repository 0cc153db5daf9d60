package poker

import (
	"testing"

	"github.com/lox/holdemtable/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreshDeckHasEveryCardOnce(t *testing.T) {
	t.Parallel()
	cards := Fresh()
	require.Len(t, cards, 52)

	seen := make(map[Card]bool, 52)
	for _, c := range cards {
		require.True(t, c.IsValid())
		require.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
	assert.Equal(t, NewCard(Two, Hearts), cards[0])
	assert.Equal(t, NewCard(Ace, Spades), cards[51])
}

func TestDeckDealsWithoutRepeats(t *testing.T) {
	t.Parallel()
	deck := NewDeck(randutil.New(42))
	seen := make(map[Card]bool, 52)

	for deck.Remaining() > 0 {
		card, err := deck.DealOne()
		require.NoError(t, err)
		require.False(t, seen[card], "card %s dealt twice", card)
		seen[card] = true
	}
	assert.Len(t, seen, 52)

	_, err := deck.Deal(1)
	require.ErrorIs(t, err, ErrDeckExhausted)
	require.ErrorIs(t, deck.Burn(), ErrDeckExhausted)
}

func TestDeckShuffleIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()
	a, err := NewDeck(randutil.New(7)).Deal(52)
	require.NoError(t, err)
	b, err := NewDeck(randutil.New(7)).Deal(52)
	require.NoError(t, err)
	c, err := NewDeck(randutil.New(8)).Deal(52)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, Fresh(), a)
}

func TestStackedDeckDealsInOrder(t *testing.T) {
	t.Parallel()
	deck := NewDeckFromCards(MustParseCards("As Kd 10h 2c"))

	require.NoError(t, deck.Burn())
	cards, err := deck.Deal(2)
	require.NoError(t, err)
	assert.Equal(t, MustParseCards("Kd 10h"), cards)
	assert.Equal(t, 1, deck.Remaining())

	_, err = deck.Deal(2)
	require.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 1, deck.Remaining(), "failed deal must not consume cards")
}

func TestShuffleIsRoughlyUniform(t *testing.T) {
	t.Parallel()
	rng := randutil.New(1)
	const trials = 5200
	topCounts := make(map[Card]int, 52)
	for range trials {
		d := NewDeck(rng)
		c, err := d.DealOne()
		require.NoError(t, err)
		topCounts[c]++
	}
	// Expected 100 per card; allow generous slack.
	for _, c := range Fresh() {
		assert.InDelta(t, 100, topCounts[c], 50, "card %s", c)
	}
}
