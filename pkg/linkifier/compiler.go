package linkifier

import (
	"fmt"
	"regexp"

	"github.com/yosida95/uritemplate/v3"

	"github.com/arthur-debert/linkify/pkg/errors"
	"github.com/arthur-debert/linkify/pkg/rules"
)

// Stage identifies which compilation step rejected a definition.
type Stage string

const (
	// StagePattern covers validation and compilation of the regular
	// expression.
	StagePattern Stage = "pattern"
	// StageTemplate covers parsing of the URL template.
	StageTemplate Stage = "template"
)

// CompileError reports a definition that could not become a working
// linkifier. It carries the offending definition and the stage that
// rejected it; the underlying cause is available through Unwrap.
type CompileError struct {
	Definition rules.Definition
	Stage      Stage
	Err        error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("linkifier %q: %s: %v", e.Definition.Pattern, e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compile turns a definition into a ready-to-scan Linkifier. It is a
// pure function: no I/O, no logging, no shared state. A rejected
// definition comes back as a *CompileError.
func Compile(def rules.Definition) (*Linkifier, error) {
	if def.Pattern == "" {
		return nil, &CompileError{
			Definition: def,
			Stage:      StagePattern,
			Err:        errors.New(errors.ErrInvalidInput, "empty pattern"),
		}
	}
	if def.URLTemplate == "" {
		return nil, &CompileError{
			Definition: def,
			Stage:      StageTemplate,
			Err:        errors.New(errors.ErrInvalidInput, "empty url_template"),
		}
	}

	// Compile the raw pattern first so syntax errors point at what the
	// administrator wrote, not at the boundary wrapper.
	if _, err := regexp.Compile(def.Pattern); err != nil {
		return nil, &CompileError{
			Definition: def,
			Stage:      StagePattern,
			Err:        errors.Wrap(err, errors.ErrPatternCompile, "invalid pattern"),
		}
	}

	re, err := regexp.Compile(Wrap(def.Pattern))
	if err != nil {
		return nil, &CompileError{
			Definition: def,
			Stage:      StagePattern,
			Err:        errors.Wrap(err, errors.ErrPatternCompile, "pattern does not compose with boundary expression"),
		}
	}

	reMid, err := regexp.Compile(wrapMid(def.Pattern))
	if err != nil {
		return nil, &CompileError{
			Definition: def,
			Stage:      StagePattern,
			Err:        errors.Wrap(err, errors.ErrPatternCompile, "pattern does not compose with boundary expression"),
		}
	}

	tmpl, err := uritemplate.New(def.URLTemplate)
	if err != nil {
		return nil, &CompileError{
			Definition: def,
			Stage:      StageTemplate,
			Err:        errors.Wrap(err, errors.ErrTemplateParse, "invalid url template"),
		}
	}

	// Named groups from the raw pattern sit at indices 3..N-1 of the
	// wrapped expression: 1 is the before context, 2 the pattern, N
	// the after context.
	afterIdx := re.NumSubexp()
	var groups []groupRef
	for i, name := range re.SubexpNames() {
		if i >= 3 && i < afterIdx && name != "" {
			groups = append(groups, groupRef{name: name, idx: i})
		}
	}

	return &Linkifier{
		def:      def,
		re:       re,
		reMid:    reMid,
		template: tmpl,
		groups:   groups,
		afterIdx: afterIdx,
	}, nil
}
