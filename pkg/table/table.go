package table

import (
	"sync/atomic"

	"github.com/arthur-debert/linkify/pkg/linkifier"
	"github.com/arthur-debert/linkify/pkg/logging"
	"github.com/arthur-debert/linkify/pkg/rules"
)

// Reporter receives the outcome of table rebuilds. RuleFailed fires
// once per definition that did not compile; Rebuilt fires once per
// rebuild with the final counts. Implementations must not rely on
// being called from any particular goroutine.
type Reporter interface {
	RuleFailed(def rules.Definition, err error)
	Rebuilt(loaded, failed int)
}

// snapshot is one immutable table state. A new one is built per
// rebuild and published whole.
type snapshot struct {
	linkifiers []*linkifier.Linkifier
}

// Table is the replaceable mapping from compiled matchers to parsed
// URL templates, in definition order. The zero value is not usable;
// construct with New.
type Table struct {
	current  atomic.Pointer[snapshot]
	reporter Reporter
}

// Option configures a Table.
type Option func(*Table)

// WithReporter routes rebuild outcomes to r instead of the default
// log reporter.
func WithReporter(r Reporter) Option {
	return func(t *Table) {
		t.reporter = r
	}
}

// New returns an empty table.
func New(opts ...Option) *Table {
	t := &Table{}
	t.current.Store(&snapshot{})
	for _, opt := range opts {
		opt(t)
	}
	if t.reporter == nil {
		t.reporter = NewLogReporter()
	}
	return t
}

// Update replaces the table contents wholesale. It never fails:
// definitions that do not compile are dropped and reported, and the
// rest are published together in definition order. The new state is
// built completely aside before a single atomic swap, so readers see
// either the old table or the new one.
func (t *Table) Update(defs []rules.Definition) {
	logger := logging.GetLogger("table")
	done := logging.LogOperationStart(logger, "rebuild")
	defer done()

	next := make([]*linkifier.Linkifier, 0, len(defs))
	failed := 0
	for _, def := range defs {
		l, err := linkifier.Compile(def)
		if err != nil {
			failed++
			t.reportFailure(def, err)
			continue
		}
		next = append(next, l)
	}

	t.current.Store(&snapshot{linkifiers: next})
	t.reportRebuilt(len(next), failed)
}

// Initialize establishes the first table state. It is Update under a
// name that reads better at process startup.
func (t *Table) Initialize(defs []rules.Definition) {
	t.Update(defs)
}

// Get returns the current snapshot in table order. The slice is
// shared: callers iterate it for one scan pass and let it go, without
// mutating it or retaining it across the next Update.
func (t *Table) Get() []*linkifier.Linkifier {
	return t.current.Load().linkifiers
}

// Len reports how many rules are currently loaded.
func (t *Table) Len() int {
	return len(t.Get())
}

// Entries returns the definitions behind the current snapshot, in
// table order.
func (t *Table) Entries() []rules.Definition {
	ls := t.Get()
	defs := make([]rules.Definition, len(ls))
	for i, l := range ls {
		defs[i] = l.Definition()
	}
	return defs
}

// Reporting is fire-and-forget: a panicking reporter must not break
// the rebuild.

func (t *Table) reportFailure(def rules.Definition, err error) {
	defer func() { _ = recover() }()
	t.reporter.RuleFailed(def, err)
}

func (t *Table) reportRebuilt(loaded, failed int) {
	defer func() { _ = recover() }()
	t.reporter.Rebuilt(loaded, failed)
}
