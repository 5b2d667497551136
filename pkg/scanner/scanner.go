// Package scanner applies a linkifier table to plain text.
//
// Scan resolves overlap between rules in favor of the rule registered
// first in the table; ScanAll skips that policy and hands every raw
// match to the caller. Fragment renders a scan as an HTML paragraph
// with anchor elements.
//
// A scanner takes one table snapshot per pass, so a concurrent table
// update affects the next scan, never the one in flight.
package scanner

import (
	"sort"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/linkify/pkg/linkifier"
	"github.com/arthur-debert/linkify/pkg/logging"
	"github.com/arthur-debert/linkify/pkg/table"
)

// Hit is one linkified span: the rule that claimed it, the match, and
// the expanded destination URL.
type Hit struct {
	Rule  *linkifier.Linkifier
	Match *linkifier.Match
	URL   string
}

// Scanner runs a rule table over text.
type Scanner struct {
	table  *table.Table
	logger zerolog.Logger
}

func New(t *table.Table) *Scanner {
	return &Scanner{
		table:  t,
		logger: logging.GetLogger("scanner"),
	}
}

// Scan returns the linkified spans of text, leftmost first. When two
// rules claim overlapping spans, the rule registered earlier in the
// table wins; within one rule, earlier matches win.
func (s *Scanner) Scan(text string) []Hit {
	return ScanWith(s.table.Get(), text)
}

// ScanWith is Scan over an explicit snapshot, for callers that hold
// one snapshot across several scans, like a document renderer visiting
// many text nodes.
func ScanWith(ls []*linkifier.Linkifier, text string) []Hit {
	var hits []Hit
	var claimed []span

	for _, l := range ls {
		for _, m := range findAll(l, text) {
			if overlaps(claimed, m.Start, m.End) {
				continue
			}
			url, err := l.Expand(m)
			if err != nil {
				logger := logging.GetLogger("scanner")
				logger.Debug().Err(err).
					Str("pattern", l.Pattern()).Msg("Skipping unexpandable match")
				continue
			}
			claimed = append(claimed, span{start: m.Start, end: m.End})
			hits = append(hits, Hit{Rule: l, Match: m, URL: url})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Match.Start < hits[j].Match.Start
	})
	return hits
}

// ScanAll returns every match of every rule, overlaps included,
// leftmost first with ties in table order. Callers wanting a different
// overlap policy than Scan's start from this.
func (s *Scanner) ScanAll(text string) []Hit {
	var hits []Hit

	for _, l := range s.table.Get() {
		for _, m := range findAll(l, text) {
			url, err := l.Expand(m)
			if err != nil {
				s.logger.Debug().Err(err).Str("pattern", l.Pattern()).Msg("Skipping unexpandable match")
				continue
			}
			hits = append(hits, Hit{Rule: l, Match: m, URL: url})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Match.Start < hits[j].Match.Start
	})
	return hits
}

// findAll walks one rule across the text, resuming after each
// semantic match so a shared boundary character can introduce the
// next one.
func findAll(l *linkifier.Linkifier, text string) []*linkifier.Match {
	var out []*linkifier.Match
	pos := 0
	for pos <= len(text) {
		m := l.Find(text, pos)
		if m == nil {
			break
		}
		out = append(out, m)

		next := m.ContinueAt
		if next <= pos {
			if pos >= len(text) {
				break
			}
			// zero-width progress: step over one rune
			_, size := utf8.DecodeRuneInString(text[pos:])
			next = pos + size
		}
		pos = next
	}
	return out
}

type span struct {
	start, end int
}

func overlaps(claimed []span, start, end int) bool {
	for _, c := range claimed {
		if start < c.end && c.start < end {
			return true
		}
	}
	return false
}
