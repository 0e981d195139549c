package resilience

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ErrOpenCircuit is returned when the breaker refuses a call.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State is the breaker position.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Options tunes a Breaker.
type Options struct {
	// Target labels metrics and logs, e.g. "redis".
	Target       string
	MinRequests  int
	FailureRatio float64
	// OpenFor is the cool-off before a half-open probe is let through.
	OpenFor time.Duration

	Metrics *Metrics
	Logger  *zerolog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Breaker is a failure-ratio circuit breaker guarding one dependency.
type Breaker struct {
	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	opts      Options
}

// NewBreaker constructs a closed breaker.
func NewBreaker(opts Options) *Breaker {
	if opts.MinRequests <= 0 {
		opts.MinRequests = 1
	}
	if opts.FailureRatio <= 0 {
		opts.FailureRatio = 0.5
	}
	opts.FailureRatio = min(opts.FailureRatio, 1)
	if opts.OpenFor <= 0 {
		opts.OpenFor = 30 * time.Second
	}
	opts.Target = strings.TrimSpace(opts.Target)
	if opts.Target == "" {
		opts.Target = "default"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	b := &Breaker{state: Closed, opts: opts}
	b.opts.Metrics.setState(b.opts.Target, Closed)
	return b
}

// State returns the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a call may go through. An open breaker admits one
// probe once the cool-off has elapsed and moves to half-open.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.opts.Now().Sub(b.openedAt) >= b.opts.OpenFor {
			b.changeStateLocked(ctx, HalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

// Report records the outcome of an admitted call.
func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		if success {
			b.changeStateLocked(ctx, Closed)
		} else {
			b.changeStateLocked(ctx, Open)
		}
		return
	}

	if success {
		b.successes++
	} else {
		b.failures++
	}
	total := b.failures + b.successes
	if total < b.opts.MinRequests {
		return
	}
	if float64(b.failures)/float64(total) >= b.opts.FailureRatio {
		b.changeStateLocked(ctx, Open)
	} else if total > b.opts.MinRequests*2 {
		// halve the window so old outcomes decay
		b.successes = (b.successes + 1) / 2
		b.failures = (b.failures + 1) / 2
	}
}

// Do runs fn if the breaker admits it and reports the outcome.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if !b.Allow(ctx) {
		return ErrOpenCircuit
	}
	err := fn(ctx)
	b.Report(ctx, err == nil)
	return err
}

func (b *Breaker) changeStateLocked(ctx context.Context, next State) {
	prev := b.state
	if prev == next {
		return
	}
	b.state = next
	switch next {
	case Open:
		b.openedAt = b.opts.Now()
	case Closed:
		b.openedAt = time.Time{}
	}
	b.failures = 0
	b.successes = 0
	b.opts.Metrics.transition(b.opts.Target, prev, next)

	evt := b.loggerFor(ctx).Info().
		Str("target", b.opts.Target).
		Str("from_state", prev.String()).
		Str("to_state", next.String())
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		evt = evt.Str("trace_id", span.TraceID().String())
	}
	evt.Msg("breaker_transition")
}

func (b *Breaker) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	if b.opts.Logger != nil {
		return b.opts.Logger
	}
	nop := zerolog.Nop()
	return &nop
}
