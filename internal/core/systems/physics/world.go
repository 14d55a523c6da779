package physics

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrDuplicateCollider = errors.New("collider already registered")
	ErrColliderNotFound  = errors.New("collider not found")
	ErrNotMovable        = errors.New("collider cannot be moved")
)

var _ Scene = (*World)(nil)

// World is an in-memory Scene over a flat list of colliders.
// Queries visit colliders in insertion order.
type World struct {
	mu        sync.RWMutex
	colliders []Collider
	byID      map[ColliderID]int
}

func NewWorld() *World {
	return &World{byID: make(map[ColliderID]int)}
}

// Add registers a collider. Identities must be unique.
func (w *World) Add(c Collider) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.byID[c.ID()]; exists {
		return fmt.Errorf("add %q: %w", c.Name(), ErrDuplicateCollider)
	}
	w.byID[c.ID()] = len(w.colliders)
	w.colliders = append(w.colliders, c)
	return nil
}

// Remove unregisters a collider, keeping the order of the others.
func (w *World) Remove(id ColliderID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.byID[id]
	if !ok {
		return ErrColliderNotFound
	}
	w.colliders = append(w.colliders[:idx], w.colliders[idx+1:]...)
	delete(w.byID, id)
	for i := idx; i < len(w.colliders); i++ {
		w.byID[w.colliders[i].ID()] = i
	}
	return nil
}

// Move sets the center of a collider created by this package.
func (w *World) Move(id ColliderID, center r3.Vec) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx, ok := w.byID[id]
	if !ok {
		return ErrColliderNotFound
	}
	m, ok := w.colliders[idx].(interface{ setCenter(r3.Vec) })
	if !ok {
		return ErrNotMovable
	}
	m.setCenter(center)
	return nil
}

// Get returns a collider by identity.
func (w *World) Get(id ColliderID) (Collider, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	idx, ok := w.byID[id]
	if !ok {
		return nil, false
	}
	return w.colliders[idx], true
}

func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.colliders)
}

func (w *World) CastRay(origin, direction r3.Vec, maxDistance float64, mask Layer) (RaycastHit, bool) {
	n := r3.Norm(direction)
	if n == 0 || maxDistance <= 0 {
		return RaycastHit{}, false
	}
	dir := r3.Scale(1/n, direction)

	w.mu.RLock()
	defer w.mu.RUnlock()

	best := math.Inf(1)
	var hit RaycastHit
	for _, c := range w.colliders {
		if !c.Layer().Matches(mask) {
			continue
		}
		t, ok := c.IntersectRay(origin, dir, maxDistance)
		if !ok || t >= best {
			continue
		}
		best = t
		hit = RaycastHit{
			Collider: c.ID(),
			Point:    r3.Add(origin, r3.Scale(t, dir)),
			Distance: t,
		}
	}
	return hit, !math.IsInf(best, 1)
}

func (w *World) OverlapSphere(origin r3.Vec, radius float64, mask Layer, buf []Overlap) int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	n := 0
	for _, c := range w.colliders {
		if n == len(buf) {
			break
		}
		if !c.Layer().Matches(mask) || !c.OverlapsSphere(origin, radius) {
			continue
		}
		buf[n] = Overlap{Collider: c.ID(), Position: c.Center()}
		n++
	}
	return n
}

func (c *colliderBase) setCenter(center r3.Vec) { c.center = center }
