package perception

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/zeusync/fieldofview/internal/core/events/bus"
	"github.com/zeusync/fieldofview/internal/core/observability/log"
	"github.com/zeusync/fieldofview/internal/core/vision"
)

var ErrUnexpectedPayload = errors.New("unexpected event payload")

// TrackerStats counts the target events a Tracker has applied.
type TrackerStats struct {
	Acquired uint64
	Changed  uint64
	Lost     uint64
}

// Tracker keeps a Blackboard in sync with the target events of every sensor
// publishing on a bus.
type Tracker struct {
	bb     *Blackboard
	logger log.Log
	subs   []bus.Subscription

	acquired atomic.Uint64
	changed  atomic.Uint64
	lost     atomic.Uint64
}

func NewTracker(b bus.EventBus, bb *Blackboard, logger log.Log) (*Tracker, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	t := &Tracker{bb: bb, logger: logger.With(log.String("component", "perception"))}
	for _, et := range []string{vision.EventTargetAcquired, vision.EventTargetChanged, vision.EventTargetLost} {
		sub, err := b.Subscribe(et, t.handle)
		if err != nil {
			_ = t.Close()
			return nil, fmt.Errorf("subscribe %s: %w", et, err)
		}
		t.subs = append(t.subs, sub)
	}
	return t, nil
}

func (t *Tracker) handle(e bus.Event) error {
	te, ok := e.Data().(vision.TargetEvent)
	if !ok {
		return fmt.Errorf("%s from %s: %w", e.Type(), e.Source(), ErrUnexpectedPayload)
	}

	switch e.Type() {
	case vision.EventTargetLost:
		t.lost.Add(1)
		t.bb.Delete(te.Sensor)
	case vision.EventTargetAcquired:
		t.acquired.Add(1)
		t.bb.Set(te.Sensor, Entry{Nearest: te.Current, Time: te.Time})
	default:
		t.changed.Add(1)
		t.bb.Set(te.Sensor, Entry{Nearest: te.Current, Time: te.Time})
	}
	t.logger.Debug("perception updated",
		log.String("sensor", te.Sensor),
		log.String("event", e.Type()),
		log.Stringer("target", te.Current.Target),
	)
	return nil
}

func (t *Tracker) Blackboard() *Blackboard { return t.bb }

func (t *Tracker) Stats() TrackerStats {
	return TrackerStats{
		Acquired: t.acquired.Load(),
		Changed:  t.changed.Load(),
		Lost:     t.lost.Load(),
	}
}

// Close cancels the bus subscriptions.
func (t *Tracker) Close() error {
	var all error
	for _, s := range t.subs {
		all = errors.Join(all, s.Cancel())
	}
	t.subs = nil
	return all
}
