package perception

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/zeusync/fieldofview/internal/core/vision"
)

// Entry is what one sensor currently perceives.
type Entry struct {
	Nearest vision.NearestTarget
	// Time is the simulated time of the scan that produced Nearest.
	Time    float64
	Updated time.Time
}

// Blackboard is shared perception state keyed by sensor name. It is safe for
// concurrent use; readers such as AI agents may poll it from any goroutine.
type Blackboard struct {
	mu      sync.RWMutex
	entries map[string]Entry
	version int64
}

func NewBlackboard() *Blackboard {
	return &Blackboard{entries: make(map[string]Entry)}
}

// Set stores the entry for a sensor.
func (bb *Blackboard) Set(sensor string, e Entry) {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if e.Updated.IsZero() {
		e.Updated = time.Now()
	}
	bb.entries[sensor] = e
	bb.version++
}

func (bb *Blackboard) Get(sensor string) (Entry, bool) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	e, ok := bb.entries[sensor]
	return e, ok
}

func (bb *Blackboard) Has(sensor string) bool {
	_, ok := bb.Get(sensor)
	return ok
}

func (bb *Blackboard) Delete(sensor string) {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if _, ok := bb.entries[sensor]; !ok {
		return
	}
	delete(bb.entries, sensor)
	bb.version++
}

// Sensors returns the names of sensors with a current target, sorted.
func (bb *Blackboard) Sensors() []string {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	names := make([]string, 0, len(bb.entries))
	for name := range bb.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetVersion increases with every change.
func (bb *Blackboard) GetVersion() int64 {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.version
}

func (bb *Blackboard) Clear() {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	bb.entries = make(map[string]Entry)
	bb.version++
}

type jsonEntry struct {
	Target   string    `json:"target"`
	Distance float64   `json:"distance"`
	Time     float64   `json:"time"`
	Updated  time.Time `json:"updated"`
}

// ToJSON exports the blackboard for debugging.
func (bb *Blackboard) ToJSON() ([]byte, error) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	export := struct {
		Sensors map[string]jsonEntry `json:"sensors"`
		Version int64                `json:"version"`
	}{
		Sensors: make(map[string]jsonEntry, len(bb.entries)),
		Version: bb.version,
	}
	for name, e := range bb.entries {
		export.Sensors[name] = jsonEntry{
			Target:   e.Nearest.Target.String(),
			Distance: e.Nearest.Distance,
			Time:     e.Time,
			Updated:  e.Updated,
		}
	}
	return json.Marshal(export)
}
