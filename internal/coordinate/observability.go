package coordinate

import (
	"time"

	"github.com/go-logr/logr"
)

// Observer receives wait-loop progress. Implementations must not write to
// stdout: that stream is reserved for machine-readable command output.
type Observer interface {
	// PhaseChanged reports a state machine transition.
	PhaseChanged(phase Phase, detail string)

	// StatusObserved reports a newly seen (deduplicated) status value.
	StatusObserved(status string, elapsed time.Duration)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) PhaseChanged(Phase, string)           {}
func (NopObserver) StatusObserved(string, time.Duration) {}

// LogObserver reports events through a logr.Logger.
type LogObserver struct {
	log logr.Logger
}

// NewLogObserver creates an observer logging to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) PhaseChanged(phase Phase, detail string) {
	o.log.Info("wait phase changed", "phase", string(phase), "detail", detail)
}

func (o *LogObserver) StatusObserved(status string, elapsed time.Duration) {
	o.log.Info("provisioner status", "status", status, "elapsed", elapsed.String())
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) PhaseChanged(phase Phase, detail string) {
	for _, o := range m {
		o.PhaseChanged(phase, detail)
	}
}

func (m MultiObserver) StatusObserved(status string, elapsed time.Duration) {
	for _, o := range m {
		o.StatusObserved(status, elapsed)
	}
}
