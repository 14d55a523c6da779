package vision

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestBuildOpenFieldFollowsArc(t *testing.T) {
	c := NewRayCaster(phys.NewWorld(), identityPose(), 10, phys.LayerAll)
	got, err := NewPolygonBuilder(c).Build(90, 5, 3)
	require.NoError(t, err)

	p := func(deg float64) r3.Vec { return r3.Scale(10, DirectionFromAngle(deg)) }
	want := BoundaryPoints{{}, p(-45), p(-22.5), p(0), p(22.5), p(45)}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("points mismatch (-want +got):\n%s", diff)
	}
	for _, pt := range got[1:] {
		assert.InDelta(t, 10, r3.Norm(pt), 1e-12)
	}
}

func TestBuildInsertsRefinedEdgePoints(t *testing.T) {
	const (
		edge = -10.0
		fov  = 90.0
		n    = 5
	)
	scene := &edgeScene{edgeDegrees: edge, wallAt: 4, wall: 11}
	c := NewRayCaster(scene, identityPose(), 10, 1)

	got, err := NewPolygonBuilder(c).Build(fov, n, 3)
	require.NoError(t, err)
	require.Len(t, got, 1+n+2)

	// apex, two misses, the refined bracket, then three wall hits
	ra, rb := got[3], got[4]
	step := fov / (n - 1)
	bound := step / 8 * 1.05

	assert.Less(t, angleOf(ra), edge)
	assert.GreaterOrEqual(t, angleOf(rb), edge)
	assert.LessOrEqual(t, math.Abs(angleOf(ra)-edge), bound)
	assert.LessOrEqual(t, math.Abs(angleOf(rb)-edge), bound)
	assert.InDelta(t, 4, r3.Norm(rb), 1e-9, "edge point lies on the wall")

	assert.InDelta(t, -22.5, angleOf(got[2]), 1e-9)
	assert.InDelta(t, 0, angleOf(got[5]), 1e-9)
	for _, pt := range got[5:] {
		assert.InDelta(t, 4, r3.Norm(pt), 1e-9)
	}
}

func TestBuildRejectsInvalidInput(t *testing.T) {
	b := NewPolygonBuilder(NewRayCaster(phys.NewWorld(), identityPose(), 10, phys.LayerAll))

	for _, n := range []int{1, 0, -3} {
		pts, err := b.Build(90, n, 0)
		assert.ErrorIs(t, err, ErrInvalidSampleCount)
		assert.Nil(t, pts)
	}
	for _, a := range []float64{-1, 360.5, math.NaN()} {
		_, err := b.Build(a, 5, 0)
		assert.ErrorIs(t, err, ErrInvalidAngle)
	}
}

func TestBuildLengthInvariants(t *testing.T) {
	w := phys.NewWorld()
	require.NoError(t, w.Add(phys.NewSphere("pillar", 1, r3.Vec{X: 1, Z: 4}, 1)))
	require.NoError(t, w.Add(phys.NewBox("wall", 1, r3.Vec{X: -3, Z: 6}, r3.Vec{X: 2, Y: 2, Z: 1})))
	b := NewPolygonBuilder(NewRayCaster(w, identityPose(), 10, phys.LayerAll))

	for _, n := range []int{2, 3, 17, 120} {
		for _, iterations := range []int{0, 4, 50} {
			pts, err := b.Build(120, n, iterations)
			require.NoError(t, err)
			assert.Equal(t, r3.Vec{}, pts[0])
			assert.GreaterOrEqual(t, len(pts), 3)
			assert.GreaterOrEqual(t, len(pts), n+1)
			for _, p := range pts {
				assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Z))
			}
		}
	}
}

func TestBuildResultIsNotAliased(t *testing.T) {
	b := NewPolygonBuilder(NewRayCaster(phys.NewWorld(), identityPose(), 10, phys.LayerAll))
	first, err := b.Build(60, 4, 0)
	require.NoError(t, err)
	keep := append(BoundaryPoints(nil), first...)

	_, err = b.Build(180, 9, 0)
	require.NoError(t, err)
	assert.Equal(t, keep, first)
}

// zeroEdgeCaster misses left of forward and hits target 1 elsewhere. Every
// refinement cast hits target 1 at the exact origin.
type zeroEdgeCaster struct{}

func (zeroEdgeCaster) Cast(dir r3.Vec) Sample {
	if math.Abs(r3.Norm(dir)-1) > 1e-12 {
		return Sample{Direction: dir, Hit: true, Target: TargetOf(1)}
	}
	if angleOf(dir) < 0 {
		return Sample{Direction: dir, Distance: 10, LocalPoint: r3.Scale(10, dir)}
	}
	return Sample{Direction: dir, Hit: true, Distance: 2, LocalPoint: r3.Scale(2, dir), Target: TargetOf(1)}
}

func TestBuildSkipsZeroRefinedPoints(t *testing.T) {
	pts, err := NewPolygonBuilder(zeroEdgeCaster{}).Build(90, 3, 2)
	require.NoError(t, err)

	// apex, miss at -45, unrefined left bracket end, hit at 0, hit at 45
	require.Len(t, pts, 5)
	assert.Equal(t, pts[1], pts[2])
	for _, p := range pts[1:] {
		assert.NotEqual(t, r3.Vec{}, p)
	}
}
