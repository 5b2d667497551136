package linkifier

import (
	"regexp"

	"github.com/yosida95/uritemplate/v3"

	"github.com/arthur-debert/linkify/pkg/errors"
	"github.com/arthur-debert/linkify/pkg/rules"
)

// groupRef ties a named capture group to its index in the wrapped
// expression.
type groupRef struct {
	name string
	idx  int
}

// Linkifier is one compiled rule: a boundary-anchored matcher plus the
// parsed URL template its captures expand into.
type Linkifier struct {
	def      rules.Definition
	re       *regexp.Regexp
	reMid    *regexp.Regexp
	template *uritemplate.Template
	groups   []groupRef
	afterIdx int
}

// Match is one occurrence of a rule in scanned text. Start and End are
// byte offsets of the semantic match; the boundary context consumed
// around it is already stripped.
type Match struct {
	// Text is the matched substring, text[Start:End].
	Text string

	Start int
	End   int

	// Groups holds the values of the pattern's named capture groups.
	// Groups that did not participate in the match are absent.
	Groups map[string]string

	// ContinueAt is where a scan should resume. It sits directly after
	// the matched text, before the consumed boundary character, so the
	// same character can introduce an adjacent match.
	ContinueAt int
}

// Definition returns the rule this linkifier was compiled from.
func (l *Linkifier) Definition() rules.Definition { return l.def }

// Pattern returns the raw pattern as the administrator wrote it.
func (l *Linkifier) Pattern() string { return l.def.Pattern }

// Template returns the raw URL template string.
func (l *Linkifier) Template() string { return l.template.Raw() }

func (l *Linkifier) String() string { return l.def.String() }

// Find returns the first match starting at or after pos, or nil. The
// start-of-input boundary only fires at pos 0; resuming mid-string
// requires a real boundary character before the pattern.
func (l *Linkifier) Find(text string, pos int) *Match {
	if pos < 0 {
		pos = 0
	}
	if pos > len(text) {
		return nil
	}

	var idx []int
	if pos == 0 {
		idx = l.re.FindStringSubmatchIndex(text)
	} else {
		idx = l.reMid.FindStringSubmatchIndex(text[pos:])
		for i, v := range idx {
			if v >= 0 {
				idx[i] = v + pos
			}
		}
	}
	if idx == nil {
		return nil
	}

	start, end := idx[4], idx[5] // group 2, the semantic match

	groups := make(map[string]string, len(l.groups))
	for _, g := range l.groups {
		s, e := idx[2*g.idx], idx[2*g.idx+1]
		if s < 0 {
			continue
		}
		groups[g.name] = text[s:e]
	}

	return &Match{
		Text:       text[start:end],
		Start:      start,
		End:        end,
		Groups:     groups,
		ContinueAt: end,
	}
}

// Expand builds the destination URL for a match by substituting its
// named captures into the rule's template. Template variables without
// a corresponding capture expand to nothing, per RFC 6570.
func (l *Linkifier) Expand(m *Match) (string, error) {
	vars := uritemplate.Values{}
	for name, val := range m.Groups {
		vars.Set(name, uritemplate.String(val))
	}

	u, err := l.template.Expand(vars)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTemplateExpand, "failed to expand url template").
			WithDetail("template", l.template.Raw()).
			WithDetail("match", m.Text)
	}
	return u, nil
}
