package vetosource

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/DoyleJ11/mapveto-backend/internal/storage"
)

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCache sets the local fallback read when the server misses. If cache
// also implements storage.Saver it is refreshed after every good fetch.
func WithCache(cache storage.Loader) Option {
	return func(c *Client) { c.cache = cache }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}
