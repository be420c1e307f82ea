package feeds

import (
	"context"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/offerings"
)

// FileFeed reads offering records from a local YAML file. Used for
// offline runs and as a fixture feed in tests.
type FileFeed struct {
	id   offerings.SourceID
	path string
}

// NewFileFeed creates a file feed adapter.
func NewFileFeed(id offerings.SourceID, path string) *FileFeed {
	return &FileFeed{id: id, path: path}
}

// ID implements sources.Source.
func (f *FileFeed) ID() offerings.SourceID {
	return f.id
}

// Fetch implements sources.Source.
func (f *FileFeed) Fetch(ctx context.Context) ([]offerings.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, errors.WrapIO("read", f.path, err)
	}

	var wire []wireRecord
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, errors.WrapIO("parse", f.path, err)
	}

	records := make([]offerings.Record, 0, len(wire))
	for i := range wire {
		records = append(records, wire[i].toRecord(f.id))
	}
	return records, nil
}
