package feeds

import (
	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/sources"
)

// Build constructs feed adapters for every entry in the registry.
func Build(reg *sources.Registry) ([]sources.Source, error) {
	srcs := make([]sources.Source, 0, len(reg.Sources))
	for _, cfg := range reg.Sources {
		src, err := New(cfg)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// New constructs one feed adapter from its configuration.
func New(cfg sources.Config) (sources.Source, error) {
	switch cfg.Kind {
	case sources.KindHTTP:
		return NewHTTPFeed(cfg.ID, cfg.URL, cfg.Timeout()), nil
	case sources.KindFile:
		return NewFileFeed(cfg.ID, cfg.Path), nil
	default:
		return nil, &errors.ValidationError{
			Field:   "kind",
			Value:   string(cfg.Kind),
			Message: "unsupported feed kind",
		}
	}
}
