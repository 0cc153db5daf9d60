package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSidePots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contribs []contribution
		pot      int
		want     []SidePot
	}{
		{
			name: "single layer",
			contribs: []contribution{
				{seat: 0, total: 100},
				{seat: 1, total: 100},
			},
			pot:  200,
			want: []SidePot{{Cap: 100, Amount: 200, Eligible: []int{0, 1}}},
		},
		{
			name: "short all-in creates a side pot",
			contribs: []contribution{
				{seat: 0, total: 50},
				{seat: 1, total: 200},
				{seat: 2, total: 200},
			},
			pot: 450,
			want: []SidePot{
				{Cap: 50, Amount: 150, Eligible: []int{0, 1, 2}},
				{Cap: 200, Amount: 300, Eligible: []int{1, 2}},
			},
		},
		{
			name: "folded chips are counted but not eligible",
			contribs: []contribution{
				{seat: 0, total: 30},
				{seat: 1, total: 80, folded: true},
				{seat: 2, total: 100},
				{seat: 3, total: 100},
			},
			pot: 310,
			want: []SidePot{
				{Cap: 30, Amount: 120, Eligible: []int{0, 2, 3}},
				{Cap: 100, Amount: 190, Eligible: []int{2, 3}},
			},
		},
		{
			name: "departed player's chips stay in play",
			contribs: []contribution{
				{seat: 0, total: 10},
				{seat: 2, total: 10},
				{seat: -1, total: 5, folded: true},
			},
			pot:  25,
			want: []SidePot{{Cap: 10, Amount: 25, Eligible: []int{0, 2}}},
		},
		{
			name: "seat yet to act contributes an empty level",
			contribs: []contribution{
				{seat: 0, total: 0},
				{seat: 1, total: 5},
				{seat: 2, total: 10},
			},
			pot: 15,
			want: []SidePot{
				{Cap: 5, Amount: 10, Eligible: []int{1, 2}},
				{Cap: 10, Amount: 5, Eligible: []int{2}},
			},
		},
		{
			name: "three all-in levels",
			contribs: []contribution{
				{seat: 0, total: 25},
				{seat: 1, total: 75},
				{seat: 2, total: 150},
				{seat: 3, total: 150},
			},
			pot: 400,
			want: []SidePot{
				{Cap: 25, Amount: 100, Eligible: []int{0, 1, 2, 3}},
				{Cap: 75, Amount: 150, Eligible: []int{1, 2, 3}},
				{Cap: 150, Amount: 150, Eligible: []int{2, 3}},
			},
		},
		{
			name:     "empty pot",
			contribs: []contribution{{seat: 0}, {seat: 1}},
			pot:      0,
			want:     nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := buildSidePots(tc.contribs, tc.pot)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.pot, sumPots(got), "layers must sum to the pot")
		})
	}
}

func TestMainPot(t *testing.T) {
	t.Parallel()
	_, ok := MainPot(nil)
	assert.False(t, ok)

	main, ok := MainPot([]SidePot{{Cap: 50}, {Cap: 200}})
	assert.True(t, ok)
	assert.Equal(t, 200, main.Cap)
}

func TestSplitPot(t *testing.T) {
	t.Parallel()
	assert.Equal(t, map[int]int{3: 50, 1: 50}, splitPot(100, []int{3, 1}))
	assert.Equal(t, map[int]int{3: 34, 1: 33, 2: 33}, splitPot(100, []int{3, 1, 2}))
	assert.Equal(t, map[int]int{2: 13, 0: 12}, splitPot(25, []int{2, 0}))
	assert.Empty(t, splitPot(10, nil))
}

func TestClockwiseFrom(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{4, 7, 1, 3}, ClockwiseFrom(3, []int{1, 3, 4, 7}))
	assert.Equal(t, []int{0, 2}, ClockwiseFrom(-1, []int{2, 0}))
}
