// Package testutil provides shared test doubles for the linkify test
// suites.
package testutil

import (
	"sync"

	"github.com/arthur-debert/linkify/pkg/rules"
)

// Failure is one recorded RuleFailed call.
type Failure struct {
	Definition rules.Definition
	Err        error
}

// Rebuild is one recorded Rebuilt call.
type Rebuild struct {
	Loaded int
	Failed int
}

// RecordingReporter captures table rebuild notifications so tests can
// assert on them. Safe for concurrent use.
type RecordingReporter struct {
	mu       sync.Mutex
	failures []Failure
	rebuilds []Rebuild
}

func (r *RecordingReporter) RuleFailed(def rules.Definition, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, Failure{Definition: def, Err: err})
}

func (r *RecordingReporter) Rebuilt(loaded, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rebuilds = append(r.rebuilds, Rebuild{Loaded: loaded, Failed: failed})
}

// Failures returns recorded failures in arrival order.
func (r *RecordingReporter) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Failure(nil), r.failures...)
}

// Rebuilds returns recorded rebuild notifications in arrival order.
func (r *RecordingReporter) Rebuilds() []Rebuild {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Rebuild(nil), r.rebuilds...)
}

// Reset discards everything recorded so far.
func (r *RecordingReporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = nil
	r.rebuilds = nil
}
