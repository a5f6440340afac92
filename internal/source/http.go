package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultFetchTimeout = 60 * time.Second

// HTTP downloads tracks over http(s).
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP source. A non-positive timeout uses the default.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTP{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the complete body behind locator, reporting progress as
// chunks arrive. Cancelling ctx aborts the transfer.
func (h *HTTP) Fetch(ctx context.Context, locator string, progress ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	total := resp.ContentLength // -1 when unknown
	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}

	chunk := make([]byte, 64*1024)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if progress != nil {
				progress(int64(buf.Len()), total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read body: %w", readErr)
		}
	}

	return buf.Bytes(), nil
}

var _ Source = (*HTTP)(nil)
