package rules

import (
	_ "embed"
	"errors"
)

//go:embed embedded/linkifiers.toml
var sampleConfig []byte

// SampleConfig returns the embedded starter definitions file, used by
// "linkify init" to seed a new configuration.
func SampleConfig() string {
	return string(sampleConfig)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
