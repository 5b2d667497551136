package rules

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/linkify/pkg/errors"
	"github.com/arthur-debert/linkify/pkg/logging"
)

// ConfigKey is the top-level key definitions live under in config
// files and wire payloads.
const ConfigKey = "linkifiers"

// envelope is the wire form shared by YAML and JSON payloads: a list
// of definitions under the "linkifiers" key.
type envelope struct {
	Linkifiers []Definition `yaml:"linkifiers" json:"linkifiers"`
}

// Load reads linkifier definitions from a TOML or YAML file. The
// format is chosen by file extension.
func Load(path string) ([]Definition, error) {
	logger := logging.GetLogger("rules.config")

	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to read definitions file").
			WithDetail("path", path)
	}

	var defs []Definition
	if err := k.Unmarshal(ConfigKey, &defs); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode definitions").
			WithDetail("path", path)
	}

	logger.Debug().Str("path", path).Int("count", len(defs)).Msg("Loaded definitions")
	return defs, nil
}

// parserFor picks the koanf parser matching a path's extension.
func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return kyaml.Parser(), nil
	default:
		return nil, errors.Newf(errors.ErrConfigLoad, "unsupported definitions format %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

// ParseYAML decodes definitions from a YAML payload with a top-level
// "linkifiers" list.
func ParseYAML(data []byte) ([]Definition, error) {
	var env envelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode YAML definitions")
	}
	return env.Linkifiers, nil
}

// ParseJSON decodes definitions from a JSON payload with a top-level
// "linkifiers" list.
func ParseJSON(data []byte) ([]Definition, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode JSON definitions")
	}
	return env.Linkifiers, nil
}

// EncodeJSON produces the JSON wire form ParseJSON reads back.
func EncodeJSON(defs []Definition) ([]byte, error) {
	data, err := json.Marshal(envelope{Linkifiers: defs})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode definitions")
	}
	return data, nil
}

// Sample returns the parsed embedded starter definitions.
func Sample() ([]Definition, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: sampleConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse embedded sample")
	}

	var defs []Definition
	if err := k.Unmarshal(ConfigKey, &defs); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode embedded sample")
	}
	return defs, nil
}

// DefaultPath returns the conventional location of the definitions
// file, honoring the XDG base directory layout.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "linkify", "linkifiers.toml")
}
