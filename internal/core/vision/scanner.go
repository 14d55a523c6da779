package vision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	phys "github.com/zeusync/fieldofview/internal/core/systems/physics"
)

// DefaultOverlapCapacity is the size of the overlap result buffer.
const DefaultOverlapCapacity = 1000

// ProximityScanner finds the nearest detectable collider on a rate limited
// schedule. Time is simulated seconds supplied by the caller.
type ProximityScanner struct {
	scene     phys.Scene
	rateLimit float64
	lastScan  float64
	nearest   NearestTarget
	buf       []phys.Overlap
	count     int
}

// NewProximityScanner preallocates capacity overlap slots. The first Scan at
// or after time rateLimit runs, as the last scan time starts at zero.
func NewProximityScanner(scene phys.Scene, rateLimit float64, capacity int) *ProximityScanner {
	if capacity <= 0 {
		capacity = DefaultOverlapCapacity
	}
	return &ProximityScanner{
		scene:     scene,
		rateLimit: rateLimit,
		buf:       make([]phys.Overlap, capacity),
	}
}

// Scan queries the scene when now >= lastScanTime + rateLimit and returns the
// current nearest target and whether a query actually ran.
func (s *ProximityScanner) Scan(origin r3.Vec, radius float64, mask phys.Layer, now float64) (NearestTarget, bool) {
	if now < s.lastScan+s.rateLimit {
		return s.nearest, false
	}
	s.count = s.scene.OverlapSphere(origin, radius, mask, s.buf)
	s.nearest = nearestOf(s.buf[:s.count], origin)
	s.lastScan = now
	return s.nearest, true
}

// ScanOnce is the stateless form of Scan. buf is used as scratch space and
// previous is returned untouched when the rate limit has not elapsed.
func ScanOnce(
	scene phys.Scene,
	buf []phys.Overlap,
	origin r3.Vec,
	radius float64,
	mask phys.Layer,
	now, lastScanTime, rateLimit float64,
	previous NearestTarget,
) (NearestTarget, float64, bool) {
	if now < lastScanTime+rateLimit {
		return previous, lastScanTime, false
	}

	n := scene.OverlapSphere(origin, radius, mask, buf)
	return nearestOf(buf[:n], origin), now, true
}

func nearestOf(matches []phys.Overlap, origin r3.Vec) NearestTarget {
	best := NearestTarget{Target: NoTarget, Distance: math.Inf(1)}
	for _, m := range matches {
		d := phys.Distance(origin, m.Position)
		if d < best.Distance {
			best = NearestTarget{Target: TargetOf(m.Collider), Distance: d}
		}
	}
	if !best.Target.Valid {
		return NearestTarget{}
	}
	return best
}

func (s *ProximityScanner) Nearest() NearestTarget { return s.nearest }

func (s *ProximityScanner) LastScanTime() float64 { return s.lastScan }

func (s *ProximityScanner) RateLimit() float64 { return s.rateLimit }

func (s *ProximityScanner) SetRateLimit(seconds float64) { s.rateLimit = seconds }

// Detected returns the matches from the last scan that ran. The slice aliases
// the scanner's buffer and is overwritten by the next scan.
func (s *ProximityScanner) Detected() []phys.Overlap { return s.buf[:s.count] }
