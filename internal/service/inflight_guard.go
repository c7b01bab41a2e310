package service

import "sync"

// InFlightGuard tracks reservation ids with an outstanding modify, so a
// re-entrant drag on the same id is rejected instead of racing it.
type InFlightGuard struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{ids: make(map[string]struct{})}
}

// Begin marks id in flight. Returns false when it already is.
func (g *InFlightGuard) Begin(id string) bool {
	if id == "" {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.ids[id]; exists {
		return false
	}
	g.ids[id] = struct{}{}
	return true
}

// End releases id.
func (g *InFlightGuard) End(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.ids, id)
}

// InFlight reports whether id has an outstanding operation.
func (g *InFlightGuard) InFlight(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, exists := g.ids[id]
	return exists
}
