package physics

import (
	"math"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/spatial/r3"
)

// IDFromName derives a stable collider identity from its name.
func IDFromName(name string) ColliderID {
	id := ColliderID(xxhash.Sum64String(name))
	if id == 0 {
		// zero is reserved for "unassigned"
		id = 1
	}
	return id
}

type colliderBase struct {
	id     ColliderID
	name   string
	layer  Layer
	center r3.Vec
}

func (c *colliderBase) ID() ColliderID { return c.id }
func (c *colliderBase) Name() string   { return c.name }
func (c *colliderBase) Layer() Layer   { return c.layer }
func (c *colliderBase) Center() r3.Vec { return c.center }

// SphereCollider is a sphere of fixed radius.
type SphereCollider struct {
	colliderBase
	Radius float64
}

func NewSphere(name string, layer Layer, center r3.Vec, radius float64) *SphereCollider {
	return &SphereCollider{
		colliderBase: colliderBase{id: IDFromName(name), name: name, layer: layer, center: center},
		Radius:       radius,
	}
}

func (s *SphereCollider) IntersectRay(origin, dir r3.Vec, maxDistance float64) (float64, bool) {
	oc := r3.Sub(origin, s.center)
	c := r3.Dot(oc, oc) - s.Radius*s.Radius
	if c <= 0 {
		return 0, false
	}
	b := r3.Dot(oc, dir)
	if b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 || t > maxDistance {
		return 0, false
	}
	return t, true
}

func (s *SphereCollider) OverlapsSphere(center r3.Vec, radius float64) bool {
	r := s.Radius + radius
	return r3.Norm2(r3.Sub(center, s.center)) <= r*r
}

// BoxCollider is an axis-aligned box in world space.
type BoxCollider struct {
	colliderBase
	HalfExtents r3.Vec
}

// NewBox creates a box from its center and full size.
func NewBox(name string, layer Layer, center, size r3.Vec) *BoxCollider {
	return &BoxCollider{
		colliderBase: colliderBase{id: IDFromName(name), name: name, layer: layer, center: center},
		HalfExtents:  r3.Scale(0.5, size),
	}
}

func (b *BoxCollider) Min() r3.Vec { return r3.Sub(b.center, b.HalfExtents) }
func (b *BoxCollider) Max() r3.Vec { return r3.Add(b.center, b.HalfExtents) }

// IntersectRay uses the slab method.
func (b *BoxCollider) IntersectRay(origin, dir r3.Vec, maxDistance float64) (float64, bool) {
	lo, hi := b.Min(), b.Max()
	tmin, tmax := math.Inf(-1), math.Inf(1)

	axes := [3][4]float64{
		{origin.X, dir.X, lo.X, hi.X},
		{origin.Y, dir.Y, lo.Y, hi.Y},
		{origin.Z, dir.Z, lo.Z, hi.Z},
	}
	for _, a := range axes {
		o, d, l, h := a[0], a[1], a[2], a[3]
		if d == 0 {
			if o < l || o > h {
				return 0, false
			}
			continue
		}
		t1, t2 := (l-o)/d, (h-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmin < 0 || tmin > maxDistance {
		return 0, false
	}
	return tmin, true
}

func (b *BoxCollider) OverlapsSphere(center r3.Vec, radius float64) bool {
	lo, hi := b.Min(), b.Max()
	closest := r3.Vec{
		X: clamp(center.X, lo.X, hi.X),
		Y: clamp(center.Y, lo.Y, hi.Y),
		Z: clamp(center.Z, lo.Z, hi.Z),
	}
	return r3.Norm2(r3.Sub(center, closest)) <= radius*radius
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
