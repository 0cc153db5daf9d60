package game

import (
	rand "math/rand/v2"
	"slices"
)

// SeatManager keeps players ordered by seat position and tracks the dealer button.
type SeatManager struct {
	players        []*Player // sorted by Seat
	dealerPosition int       // -1 before the first hand
}

// NewSeatManager creates an empty seat manager
func NewSeatManager() *SeatManager {
	return &SeatManager{dealerPosition: -1}
}

// Add seats a player. It fails if the seat or user is already taken.
func (s *SeatManager) Add(p *Player) bool {
	if s.BySeat(p.Seat) != nil || s.ByUser(p.UserID) != nil {
		return false
	}
	s.players = append(s.players, p)
	slices.SortFunc(s.players, func(a, b *Player) int { return a.Seat - b.Seat })
	return true
}

// Remove unseats a player and returns it
func (s *SeatManager) Remove(userID string) *Player {
	for i, p := range s.players {
		if p.UserID == userID {
			s.players = slices.Delete(s.players, i, i+1)
			return p
		}
	}
	return nil
}

// ByUser finds a seated player by user id
func (s *SeatManager) ByUser(userID string) *Player {
	for _, p := range s.players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// BySeat finds the player at a seat position
func (s *SeatManager) BySeat(seat int) *Player {
	for _, p := range s.players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// Players returns all seated players in seat order
func (s *SeatManager) Players() []*Player {
	return s.players
}

// Len returns the number of seated players
func (s *SeatManager) Len() int { return len(s.players) }

// DealerPosition returns the dealer seat (-1 before the first hand)
func (s *SeatManager) DealerPosition() int { return s.dealerPosition }

// ActivePlayers returns players dealt in who have not folded
func (s *SeatManager) ActivePlayers() []*Player {
	return s.filter((*Player).IsActive)
}

// PlayingPlayers returns active players who are not all-in
func (s *SeatManager) PlayingPlayers() []*Player {
	return s.filter((*Player).IsPlaying)
}

// InHand returns every player dealt into the current hand
func (s *SeatManager) InHand() []*Player {
	return s.filter(func(p *Player) bool { return p.InHand })
}

// NextPlayer returns the next seat after from that still has to act, skipping
// folded, all-in and offline seats. If nobody has to act it falls back to the
// next active seat. Returns nil when no seat qualifies.
func (s *SeatManager) NextPlayer(from int) *Player {
	if p := s.nextAfter(from, mustAct); p != nil {
		return p
	}
	return s.nextAfter(from, (*Player).IsActive)
}

// NextActive returns the next seat after from that is dealt in and not folded
func (s *SeatManager) NextActive(from int) *Player {
	return s.nextAfter(from, (*Player).IsActive)
}

// MoveDealerButton advances the button to the next active seat clockwise. When
// the current dealer seat is empty (first hand, or the dealer left) a random
// active seat is chosen instead.
func (s *SeatManager) MoveDealerButton(rng *rand.Rand) int {
	active := s.ActivePlayers()
	if len(active) == 0 {
		return s.dealerPosition
	}
	if s.BySeat(s.dealerPosition) == nil {
		s.dealerPosition = active[rng.IntN(len(active))].Seat
		return s.dealerPosition
	}
	s.dealerPosition = s.nextAfter(s.dealerPosition, (*Player).IsActive).Seat
	return s.dealerPosition
}

// Blinds returns the small and big blind players for the current button.
// Heads-up the dealer posts the small blind.
func (s *SeatManager) Blinds() (sb, bb *Player) {
	active := s.ActivePlayers()
	if len(active) < 2 {
		return nil, nil
	}
	if len(active) == 2 {
		sb = s.BySeat(s.dealerPosition)
		if sb == nil || !sb.IsActive() {
			sb = s.NextActive(s.dealerPosition)
		}
	} else {
		sb = s.NextActive(s.dealerPosition)
	}
	bb = s.NextActive(sb.Seat)
	return sb, bb
}

// ClockwiseFrom orders seats starting with the first seat after pos
func ClockwiseFrom(pos int, seats []int) []int {
	out := slices.Clone(seats)
	slices.SortFunc(out, func(a, b int) int {
		return clockwiseDistance(pos, a) - clockwiseDistance(pos, b)
	})
	return out
}

func clockwiseDistance(from, seat int) int {
	// Seats are small non-negative ints; 64 comfortably exceeds any table size.
	const ring = 64
	return ((seat-from-1)%ring + ring) % ring
}

func (s *SeatManager) nextAfter(from int, pred func(*Player) bool) *Player {
	for _, p := range s.players {
		if p.Seat > from && pred(p) {
			return p
		}
	}
	for _, p := range s.players {
		if p.Seat <= from && pred(p) {
			return p
		}
	}
	return nil
}

func (s *SeatManager) filter(pred func(*Player) bool) []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// mustAct reports whether the seat is still obliged to act this street
func mustAct(p *Player) bool {
	return p.IsPlaying() && p.IsOnline()
}
