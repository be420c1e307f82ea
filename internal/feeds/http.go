package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ipomoney/ipopulse/pkg/errors"
	"github.com/ipomoney/ipopulse/pkg/offerings"
)

// httpUserAgent identifies us to feed operators.
const httpUserAgent = "ipopulse/1.0"

// HTTPFeed fetches a JSON array of offering records from one URL.
type HTTPFeed struct {
	id     offerings.SourceID
	url    string
	client *http.Client
}

// NewHTTPFeed creates an HTTP feed adapter. The timeout bounds the
// whole request on top of whatever context the caller supplies; zero
// leaves only the caller's context in charge.
func NewHTTPFeed(id offerings.SourceID, url string, timeout time.Duration) *HTTPFeed {
	return &HTTPFeed{
		id:  id,
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ID implements sources.Source.
func (f *HTTPFeed) ID() offerings.SourceID {
	return f.id
}

// Fetch implements sources.Source.
func (f *HTTPFeed) Fetch(ctx context.Context) ([]offerings.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", httpUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d: %w", f.url, resp.StatusCode, errors.ErrInvalidInput)
	}

	var wire []wireRecord
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.url, err)
	}

	records := make([]offerings.Record, 0, len(wire))
	for i := range wire {
		records = append(records, wire[i].toRecord(f.id))
	}
	return records, nil
}
