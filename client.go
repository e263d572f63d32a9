package bufr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxFetchBytes caps a fetched file. Whole-network TEMP bulletin files are a
// few MB; the cap prevents OOM if a misbehaving server sends a huge body.
const maxFetchBytes = 100 << 20 // 100 MB

// Client fetches BUFR files from an HTTP archive (NCEI, NOMADS, a local
// mirror). The zero value is not usable; call NewClient.
type Client struct {
	HTTPClient *http.Client
}

// NewClient returns a client with a generous timeout suited to archive
// downloads.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Fetch downloads url and returns the body. The context is propagated so
// callers can cancel in-flight requests.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
}

// FetchMessages downloads url and decodes every BUFR message in the body.
// tables may be nil for the builtin catalogue.
func (c *Client) FetchMessages(ctx context.Context, url string, tables *Tables) ([]*Message, error) {
	raw, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	rs := bytes.NewReader(raw)
	var msgs []*Message
	for {
		if err := ScanToStart(rs); err != nil {
			if errors.Is(err, ErrEndOfStream) && len(msgs) > 0 {
				return msgs, nil
			}
			return nil, err
		}
		msg, err := ReadMessage(rs, tables)
		if err != nil {
			return nil, fmt.Errorf("%s: message %d: %w", url, len(msgs), err)
		}
		msgs = append(msgs, msg)
	}
}
