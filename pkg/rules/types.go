package rules

import (
	"fmt"

	"github.com/arthur-debert/linkify/pkg/errors"
)

// Definition is a single linkifier rule as an administrator writes it:
// a regular expression whose named groups feed a URL template.
type Definition struct {
	// Pattern is the raw regular expression, without anchors or
	// boundary handling. Named groups become template variables.
	Pattern string `koanf:"pattern" toml:"pattern" yaml:"pattern" json:"pattern"`

	// URLTemplate is an RFC 6570 template expanded with the pattern's
	// named groups, e.g. "https://example.com/ticket/{id}".
	URLTemplate string `koanf:"url_template" toml:"url_template" yaml:"url_template" json:"url_template"`
}

// Validate checks that the definition is structurally complete.
// It does not compile the pattern or parse the template.
func (d Definition) Validate() error {
	if d.Pattern == "" {
		return errors.New(errors.ErrInvalidInput, "definition has empty pattern")
	}
	if d.URLTemplate == "" {
		return errors.New(errors.ErrInvalidInput, "definition has empty url_template").
			WithDetail("pattern", d.Pattern)
	}
	return nil
}

// String renders the definition in "pattern -> url_template" form for
// logs and CLI output.
func (d Definition) String() string {
	return fmt.Sprintf("%s -> %s", d.Pattern, d.URLTemplate)
}
