package configsource

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source looks up raw configuration values by key.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// Setting names a configuration value: the keys to consult, in precedence
// order, and the value used when none of them is set.
type Setting struct {
	Keys    []string
	Default string
}

// Chain consults sources in order.
type Chain []Source

// Resolve returns the first non-empty value for s. Keys are tried in order and
// each key is tried against every source before moving to the next key, so a
// primary key anywhere beats an alias anywhere. Values are returned verbatim.
func (c Chain) Resolve(s Setting) string {
	for _, key := range s.Keys {
		for _, source := range c {
			if value, ok := source.Lookup(key); ok && value != "" {
				return value
			}
		}
	}
	return s.Default
}

// Names lists the source names, for logging.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for _, source := range c {
		names = append(names, source.Name())
	}
	return names
}

// EnvSource reads the process environment on every lookup.
type EnvSource struct{}

func NewEnvSource() *EnvSource {
	return &EnvSource{}
}

func (s *EnvSource) Name() string {
	return "env"
}

func (s *EnvSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapSource serves values from a fixed map.
type MapSource struct {
	name   string
	values map[string]string
}

func NewMapSource(name string, values map[string]string) *MapSource {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapSource{name: name, values: copied}
}

func (s *MapSource) Name() string {
	return s.name
}

func (s *MapSource) Lookup(key string) (string, bool) {
	value, ok := s.values[key]
	return value, ok
}

// LoadYAMLFile reads a flat YAML mapping of keys to scalar values, for example:
//
//	PROXY_HOST: 10.0.0.5
//	PROXY_PORT: 3128
//
// The file is read once; lookups are served from memory.
func LoadYAMLFile(path string) (*MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return ParseYAML("yaml:"+path, data)
}

// ParseYAML builds a MapSource from YAML content. Nested mappings and
// sequences are rejected.
func ParseYAML(name string, data []byte) (*MapSource, error) {
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			values[key] = ""
		case string:
			values[key] = v
		case int, int64, uint64, float64, bool:
			values[key] = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("parse %s: key %q must be a scalar", name, key)
		}
	}
	return NewMapSource(name, values), nil
}
