// Package realtime reads live seat status from the operator's seat feed.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/seatmap"
)

// maxBody caps a layout response; a double-deck layout is a few KB.
const maxBody = 1 << 20

// Client polls GET {base}/buses/{busID}/seats.
type Client struct {
	base   string
	client *http.Client
}

func NewClient(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// FetchLayout returns the live layout of a bus. 404 is NotFound; any other
// non-200 status, transport error or bad body is returned as an error so the
// caller keeps its last known grid.
func (c *Client) FetchLayout(ctx context.Context, busID string) (*seatmap.Payload, error) {
	busID = strings.TrimSpace(busID)
	if busID == "" {
		return nil, domain.NotFoundError{Resource: "seat layout"}
	}
	endpoint := fmt.Sprintf("%s/buses/%s/seats", c.base, url.PathEscape(busID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NotFoundError{Resource: "seat layout"}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("seat feed returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var p seatmap.Payload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode seat feed: %w", err)
	}
	return &p, nil
}
