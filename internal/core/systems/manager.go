package systems

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/zeusync/fieldofview/internal/core/observability/log"
)

var (
	ErrAlreadyRegistered = errors.New("system already registered")
	ErrNotRegistered     = errors.New("system not registered")
)

// CommitFunc is the host hook that applies the frame's transform updates.
type CommitFunc func(ctx FrameContext) error

// Manager runs registered systems in a fixed per-frame order:
// every Update, then the commit hook, then every LateUpdate.
type Manager struct {
	logger  log.Log
	systems []entry
	frame   uint64
	last    float64
}

type entry struct {
	system   System
	priority Priority
	metrics  [2]Metrics // update, late update
}

func NewManager(logger log.Log) *Manager {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Manager{logger: logger}
}

func (m *Manager) Register(s System) error {
	for _, e := range m.systems {
		if e.system.Name() == s.Name() {
			return fmt.Errorf("%s: %w", s.Name(), ErrAlreadyRegistered)
		}
	}
	p := PriorityNormal
	if ps, ok := s.(Prioritized); ok {
		p = ps.Priority()
	}
	m.systems = append(m.systems, entry{system: s, priority: p})
	sort.SliceStable(m.systems, func(i, j int) bool {
		return m.systems[i].priority > m.systems[j].priority
	})
	return nil
}

func (m *Manager) Unregister(name string) error {
	for i, e := range m.systems {
		if e.system.Name() == name {
			m.systems = append(m.systems[:i], m.systems[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", name, ErrNotRegistered)
}

// ExecutionOrder lists system names in the order they run within a phase.
func (m *Manager) ExecutionOrder() []string {
	out := make([]string, len(m.systems))
	for i, e := range m.systems {
		out[i] = e.system.Name()
	}
	return out
}

// Tick advances one frame at simulated time now. Errors from individual
// systems are joined; a commit error stops the frame before LateUpdate.
func (m *Manager) Tick(now float64, commit CommitFunc) error {
	m.frame++
	ctx := FrameContext{Frame: m.frame, Now: now, Delta: now - m.last}
	m.last = now

	var all error
	for i := range m.systems {
		all = errors.Join(all, m.run(i, PhaseUpdate, ctx))
	}

	if commit != nil {
		if err := commit(ctx); err != nil {
			return errors.Join(all, fmt.Errorf("%s: %w", PhaseCommit, err))
		}
	}

	for i := range m.systems {
		all = errors.Join(all, m.run(i, PhaseLateUpdate, ctx))
	}
	return all
}

func (m *Manager) run(i int, phase ExecutionPhase, ctx FrameContext) error {
	e := &m.systems[i]
	slot := 0
	call := e.system.Update
	if phase == PhaseLateUpdate {
		slot = 1
		call = e.system.LateUpdate
	}

	start := time.Now()
	err := call(ctx)
	took := time.Since(start)

	mt := &e.metrics[slot]
	mt.ExecutionCount++
	mt.TotalExecutionTime += took
	if took > mt.MaxExecutionTime {
		mt.MaxExecutionTime = took
	}
	if err != nil {
		mt.ErrorCount++
		mt.LastError = err
		m.logger.Error("system failed",
			log.String("system", e.system.Name()),
			log.String("phase", phase.String()),
			log.Error(err),
		)
		return fmt.Errorf("%s %s: %w", e.system.Name(), phase, err)
	}
	return nil
}

// Metrics returns the metrics of a system for PhaseUpdate or PhaseLateUpdate.
func (m *Manager) Metrics(name string, phase ExecutionPhase) (Metrics, bool) {
	for _, e := range m.systems {
		if e.system.Name() != name {
			continue
		}
		if phase == PhaseLateUpdate {
			return e.metrics[1], true
		}
		return e.metrics[0], true
	}
	return Metrics{}, false
}

func (m *Manager) Frame() uint64 { return m.frame }
