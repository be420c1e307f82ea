package sources

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ipomoney/ipopulse/pkg/authority"
	"github.com/ipomoney/ipopulse/pkg/errors"
)

// Registry is the parsed source configuration file.
type Registry struct {
	Sources []Config `yaml:"sources"`
}

// LoadRegistry reads and validates a YAML source registry.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses and validates registry YAML.
func ParseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, &errors.ValidationError{
			Field:   "sources",
			Message: "invalid registry YAML: " + err.Error(),
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks the registry for duplicate or incomplete entries.
func (r *Registry) Validate() error {
	seen := make(map[string]bool, len(r.Sources))
	for _, cfg := range r.Sources {
		if cfg.ID == "" {
			return &errors.ValidationError{Field: "id", Message: "source id is required"}
		}
		if seen[cfg.ID.String()] {
			return &errors.ValidationError{
				Field:   "id",
				Value:   cfg.ID.String(),
				Message: "duplicate source id",
			}
		}
		seen[cfg.ID.String()] = true

		if !cfg.Kind.IsValid() {
			return &errors.ValidationError{
				Field:   "kind",
				Value:   string(cfg.Kind),
				Message: "kind must be http or file",
			}
		}
		if cfg.Kind == KindHTTP && cfg.URL == "" {
			return &errors.ValidationError{Field: "url", Message: "http source requires a url"}
		}
		if cfg.Kind == KindFile && cfg.Path == "" {
			return &errors.ValidationError{Field: "path", Message: "file source requires a path"}
		}
	}
	return nil
}

// Table builds the authority table declared by the registry.
func (r *Registry) Table() *authority.Table {
	table := authority.New()
	for _, cfg := range r.Sources {
		table.Set(cfg.ID, authority.Descriptive, cfg.Priority.Descriptive)
		table.Set(cfg.ID, authority.Premium, cfg.Priority.Premium)
	}
	return table
}
