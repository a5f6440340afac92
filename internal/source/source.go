// Package source fetches the complete encoded bytes of a track, from local
// disk or over HTTP. The orchestrator hands these bytes to the buffered
// engine for decoding; nothing here touches the audio path.
package source

import (
	"context"
	"net/url"
)

// ProgressFunc receives fetch progress. total is -1 when unknown.
type ProgressFunc func(done, total int64)

// Source fetches the complete encoded audio for a locator.
type Source interface {
	// Fetch returns the full contents behind locator. It honors ctx
	// cancellation between reads; progress may be nil.
	Fetch(ctx context.Context, locator string, progress ProgressFunc) ([]byte, error)
}

// Router dispatches to a file or HTTP source based on the locator scheme.
type Router struct {
	file Source
	http Source
}

// NewRouter creates a router over the given file and HTTP sources.
func NewRouter(file, http Source) *Router {
	return &Router{file: file, http: http}
}

// Fetch picks the HTTP source for http(s) locators, the file source
// otherwise.
func (r *Router) Fetch(ctx context.Context, locator string, progress ProgressFunc) ([]byte, error) {
	if IsRemote(locator) {
		return r.http.Fetch(ctx, locator, progress)
	}
	return r.file.Fetch(ctx, locator, progress)
}

// IsRemote reports whether the locator is fetched over the network.
func IsRemote(locator string) bool {
	u, err := url.Parse(locator)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

var _ Source = (*Router)(nil)
