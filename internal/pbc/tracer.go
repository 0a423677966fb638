package pbc

import (
	"math/big"

	"github.com/sirupsen/logrus"
)

// SearchPosition is a snapshot of the search state a Tracer can report on:
// the current trail and the constraint that triggered a conflict, if any.
type SearchPosition interface {
	Trail() []TrailFrame
	ConflictConstraint() *Constraint
}

// Event names the moments inside solveComponent/branch a Tracer is asked to
// report on.
type Event int

const (
	EventCacheHit Event = iota
	EventCacheMiss
	EventComponentSplit
	EventConflict
)

func (e Event) String() string {
	switch e {
	case EventCacheHit:
		return "cache_hit"
	case EventCacheMiss:
		return "cache_miss"
	case EventComponentSplit:
		return "component_split"
	case EventConflict:
		return "conflict"
	default:
		return "?"
	}
}

// Tracer observes the search as it runs: Trace reports a position at a
// specific event, at debug granularity, while SolveStart/SolveFinish bracket
// the top-level Count call at info granularity. The zero-cost DefaultTracer
// is used unless a caller opts into logging via WithTracer.
type Tracer interface {
	Trace(p SearchPosition, event Event)
	SolveStart()
	SolveFinish(count *big.Int)
}

// DefaultTracer discards every trace event.
type DefaultTracer struct{}

func (DefaultTracer) Trace(SearchPosition, Event) {}
func (DefaultTracer) SolveStart()                 {}
func (DefaultTracer) SolveFinish(*big.Int)        {}

// LoggingTracer reports cache hits/misses, component splits, and conflicts
// as structured debug log entries, and brackets the overall solve at info
// level, so it only costs anything when the CLI's --debug flag has raised
// logrus's level.
type LoggingTracer struct {
	Log *logrus.Logger
}

func (t LoggingTracer) logger() *logrus.Logger {
	if t.Log != nil {
		return t.Log
	}
	return logrus.StandardLogger()
}

func (t LoggingTracer) Trace(p SearchPosition, event Event) {
	entry := t.logger().WithField("trail_depth", len(p.Trail())).WithField("event", event.String())
	if c := p.ConflictConstraint(); event == EventConflict && c != nil {
		entry = entry.WithField("conflict_constraint", c.Index.String())
	}
	entry.Debug("search position")
}

func (t LoggingTracer) SolveStart() {
	t.logger().Info("search started")
}

func (t LoggingTracer) SolveFinish(count *big.Int) {
	t.logger().WithField("count", count.String()).Info("search finished")
}
