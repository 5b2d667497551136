package table

import (
	"github.com/rs/zerolog"

	"github.com/arthur-debert/linkify/pkg/logging"
	"github.com/arthur-debert/linkify/pkg/rules"
)

// LogReporter writes rebuild outcomes to the structured log. It is
// the reporter a table uses when none is configured.
type LogReporter struct {
	logger zerolog.Logger
}

func NewLogReporter() *LogReporter {
	return &LogReporter{logger: logging.GetLogger("table.reporter")}
}

func (r *LogReporter) RuleFailed(def rules.Definition, err error) {
	r.logger.Warn().
		Str("pattern", def.Pattern).
		Str("url_template", def.URLTemplate).
		Err(err).
		Msg("Dropped linkifier that failed to compile")
}

func (r *LogReporter) Rebuilt(loaded, failed int) {
	r.logger.Info().
		Int("loaded", loaded).
		Int("failed", failed).
		Msg("Linkifier table rebuilt")
}

// multiReporter fans out to several reporters.
type multiReporter struct {
	reporters []Reporter
}

// Multi combines reporters so a rebuild can feed, say, both the log
// and a metrics registry.
func Multi(reporters ...Reporter) Reporter {
	return &multiReporter{reporters: reporters}
}

func (m *multiReporter) RuleFailed(def rules.Definition, err error) {
	for _, r := range m.reporters {
		r.RuleFailed(def, err)
	}
}

func (m *multiReporter) Rebuilt(loaded, failed int) {
	for _, r := range m.reporters {
		r.Rebuilt(loaded, failed)
	}
}
