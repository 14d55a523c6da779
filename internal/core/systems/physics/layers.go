package physics

import (
	"errors"
	"fmt"
	"math/bits"
)

// Layer is a collision classification bitmask. A collider usually occupies a
// single bit; queries pass a mask that may combine several.
type Layer uint32

const (
	LayerNone Layer = 0
	LayerAll  Layer = ^Layer(0)

	MaxLayers = 32
)

var (
	ErrTooManyLayers = errors.New("too many layers")
	ErrUnknownLayer  = errors.New("unknown layer")
)

// Matches reports whether l shares at least one bit with mask.
func (l Layer) Matches(mask Layer) bool { return l&mask != 0 }

// LayerRegistry assigns layer bits to names in declaration order.
type LayerRegistry struct {
	names []string
	index map[string]Layer
}

func NewLayerRegistry() *LayerRegistry {
	return &LayerRegistry{index: make(map[string]Layer)}
}

// Define returns the bit for name, allocating the next free bit on first use.
func (r *LayerRegistry) Define(name string) (Layer, error) {
	if l, ok := r.index[name]; ok {
		return l, nil
	}
	if len(r.names) >= MaxLayers {
		return LayerNone, fmt.Errorf("define %q: %w", name, ErrTooManyLayers)
	}
	l := Layer(1) << len(r.names)
	r.names = append(r.names, name)
	r.index[name] = l
	return l, nil
}

// Lookup returns the bit for a previously defined name.
func (r *LayerRegistry) Lookup(name string) (Layer, error) {
	l, ok := r.index[name]
	if !ok {
		return LayerNone, fmt.Errorf("%q: %w", name, ErrUnknownLayer)
	}
	return l, nil
}

// Mask combines the named layers into a single mask.
func (r *LayerRegistry) Mask(names ...string) (Layer, error) {
	var mask Layer
	for _, n := range names {
		l, err := r.Lookup(n)
		if err != nil {
			return LayerNone, err
		}
		mask |= l
	}
	return mask, nil
}

// Name returns the name of a single-bit layer, or "" if it is not defined.
func (r *LayerRegistry) Name(l Layer) string {
	if bits.OnesCount32(uint32(l)) != 1 {
		return ""
	}
	i := bits.TrailingZeros32(uint32(l))
	if i >= len(r.names) {
		return ""
	}
	return r.names[i]
}
