package table

import (
	"maps"

	"github.com/lox/holdemtable/internal/game"
)

// View is the snapshot delivered to a viewer: the engine state plus table-level
// ready flags and the pending auto start.
type View struct {
	game.GameState
	Ready     map[string]bool `json:"ready"`
	AutoStart bool            `json:"autoStart"`
	StartsIn  float64         `json:"startsIn,omitempty"` // seconds until an armed auto start
}

// Subscription delivers views to one viewer. Only the latest view is kept:
// a slow reader skips intermediate snapshots rather than blocking the table.
type Subscription struct {
	C      <-chan View
	ch     chan View
	id     int
	viewer string
	table  *Table
}

// Subscribe registers viewer for snapshots. The current view is delivered
// immediately. An empty viewer receives the observer view.
func (t *Table) Subscribe(viewer string) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan View, 1)
	sub := &Subscription{C: ch, ch: ch, id: t.nextSub, viewer: viewer, table: t}
	t.nextSub++
	t.subs[sub.id] = sub
	sub.offer(t.viewLocked(viewer))
	return sub
}

// Close stops delivery and closes C
func (s *Subscription) Close() {
	t := s.table
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.subs[s.id]; ok {
		delete(t.subs, s.id)
		close(s.ch)
	}
}

// offer replaces any undelivered view with v
func (s *Subscription) offer(v View) {
	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- v:
	default:
	}
}

// Subscribers returns the number of open subscriptions
func (t *Table) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *Table) broadcastLocked() {
	current := [2]uint64{t.engine.Version(), t.rev}
	if current == t.sent {
		return
	}
	t.sent = current
	for _, sub := range t.subs {
		sub.offer(t.viewLocked(sub.viewer))
	}
}

func (t *Table) viewLocked(viewer string) View {
	v := View{
		GameState: t.engine.GetGameState(viewer),
		Ready:     maps.Clone(t.ready),
		AutoStart: t.settings.AutoStart,
	}
	if v.Ready == nil {
		v.Ready = map[string]bool{}
	}
	if !t.startAt.IsZero() {
		v.StartsIn = max(t.startAt.Sub(t.clock.Now()).Seconds(), 0)
	}
	return v
}
