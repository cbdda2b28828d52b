package coordinate

import (
	"context"
	"fmt"
	"time"

	"github.com/provsync/provsync/internal/docstore"
)

// Phase is a state of the status-wait state machine.
type Phase string

const (
	// PhaseAwaitingBoot means only placeholder values have been observed:
	// the provisioner has not started reporting yet.
	PhaseAwaitingBoot Phase = "awaiting-boot"
	// PhasePolling means real progress values are arriving.
	PhasePolling Phase = "polling"
	// PhaseTerminal means the terminal marker was observed.
	PhaseTerminal Phase = "terminal"
	// PhaseTimedOut means the wait ceiling elapsed without the marker.
	PhaseTimedOut Phase = "timed-out"
)

// TimeoutError reports that the provisioner did not reach the terminal
// status within the ceiling. It carries the full document coordinates and
// the worker instance name so an operator can inspect and resume manually.
type TimeoutError struct {
	Ref            docstore.Ref
	DocumentID     string
	WorkerInstance string
	LastStatus     string
	Elapsed        time.Duration
	WorkerState    string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf(
		"timed out after %s waiting for terminal status in %s/%s (last status %q); inspect the document and worker instance %q to resume manually",
		e.Elapsed, e.Ref, e.DocumentID, e.LastStatus, e.WorkerInstance)
	if e.WorkerState != "" {
		msg += fmt.Sprintf(" (instance state: %s)", e.WorkerState)
	}
	return msg
}

// Recorder receives poll-loop measurements. Implemented by the metrics
// package; the zero-value nopRecorder is used when metrics are off.
type Recorder interface {
	PollObserved(phase Phase)
	ElapsedSet(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) PollObserved(Phase)       {}
func (nopRecorder) ElapsedSet(time.Duration) {}

// Poller blocks until the provisioner's status document reaches the
// terminal marker, or the wait ceiling elapses.
//
// Each poll reads the lexicographically latest field carrying the current
// month's prefix; the booting phase (placeholder values only) has no
// ceiling of its own, matching the surrounding deployment's own limits.
type Poller struct {
	client         docstore.Client
	ref            docstore.Ref
	documentID     string
	terminal       string
	interval       time.Duration
	ceiling        time.Duration
	workerInstance string

	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
	observer Observer
	recorder Recorder
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// NewPoller creates a Poller over the status document.
func NewPoller(client docstore.Client, ref docstore.Ref, opts ...PollerOption) *Poller {
	p := &Poller{
		client:     client,
		ref:        ref,
		documentID: StatusDocument,
		terminal:   "Shutting down provisioning instance",
		interval:   10 * time.Second,
		ceiling:    45 * time.Minute,
		now:        time.Now,
		sleep:      sleepContext,
		observer:   NopObserver{},
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithTerminalStatus sets the value that marks completion.
func WithTerminalStatus(s string) PollerOption {
	return func(p *Poller) {
		p.terminal = s
	}
}

// WithInterval sets the sleep between polls.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = d
	}
}

// WithCeiling sets the hard limit on time spent in the polling phase.
func WithCeiling(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.ceiling = d
	}
}

// WithWorkerInstance names the ephemeral provisioner instance for timeout
// diagnostics.
func WithWorkerInstance(name string) PollerOption {
	return func(p *Poller) {
		p.workerInstance = name
	}
}

// WithPollerClock replaces the time source (month prefix computation).
func WithPollerClock(now func() time.Time) PollerOption {
	return func(p *Poller) {
		p.now = now
	}
}

// WithSleep replaces the sleep function. Tests use this to run the loop
// without real waiting.
func WithSleep(sleep func(context.Context, time.Duration) error) PollerOption {
	return func(p *Poller) {
		p.sleep = sleep
	}
}

// WithObserver sets the observer notified of phase changes and progress.
func WithObserver(o Observer) PollerOption {
	return func(p *Poller) {
		p.observer = o
	}
}

// WithRecorder sets the measurement recorder.
func WithRecorder(r Recorder) PollerOption {
	return func(p *Poller) {
		p.recorder = r
	}
}

// Wait blocks until the terminal status is observed, the ceiling elapses,
// or the context is cancelled. A nil return means the terminal marker was
// seen.
func (p *Poller) Wait(ctx context.Context) error {
	phase := PhaseAwaitingBoot
	var elapsed time.Duration
	lastStatus := docstore.Placeholder

	p.observer.PhaseChanged(PhaseAwaitingBoot, "waiting for the provisioner to report")

	for {
		prefix := MonthPrefix(p.now())
		value, found, err := p.client.LatestFieldWithPrefix(ctx, p.ref, p.documentID, prefix)
		if err != nil {
			return fmt.Errorf("polling %s/%s: %w", p.ref, p.documentID, err)
		}
		p.recorder.PollObserved(phase)

		if found && !docstore.IsPlaceholder(value) {
			if phase == PhaseAwaitingBoot {
				phase = PhasePolling
				p.observer.PhaseChanged(PhasePolling, "provisioner is reporting progress")
			}
			if value != lastStatus {
				lastStatus = value
				p.observer.StatusObserved(value, elapsed)
			}
			if value == p.terminal {
				p.observer.PhaseChanged(PhaseTerminal, value)
				return nil
			}
		}

		if phase == PhasePolling {
			elapsed += p.interval
			p.recorder.ElapsedSet(elapsed)
			if elapsed > p.ceiling {
				p.observer.PhaseChanged(PhaseTimedOut, lastStatus)
				return &TimeoutError{
					Ref:            p.ref,
					DocumentID:     p.documentID,
					WorkerInstance: p.workerInstance,
					LastStatus:     lastStatus,
					Elapsed:        elapsed,
				}
			}
		}

		if err := p.sleep(ctx, p.interval); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
