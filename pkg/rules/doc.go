// Package rules defines linkifier rule definitions and their
// configuration sources.
//
// A definition pairs a regular expression with a URL template. Named
// groups in the pattern become variables in the template, and the
// order of definitions is the order rules are evaluated in:
//
//	[[linkifiers]]
//	pattern = '#(?P<id>[0-9]+)'
//	url_template = 'https://example.com/issues/{id}'
//
// # Sources
//
// Definitions load from TOML or YAML files via Load, or from raw YAML
// and JSON payloads (event streams, message buses) via ParseYAML and
// ParseJSON. An embedded starter file is available through Sample and
// SampleConfig for bootstrapping a new setup.
//
// This package is deliberately dumb about semantics: it never compiles
// a pattern or parses a template. That happens in pkg/linkifier, where
// failures can be isolated per rule instead of rejecting a whole file.
package rules
