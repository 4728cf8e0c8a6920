// Package vetosource reads the veto record the way the overlay pages do: from
// the running server first, then from the local vetoresult.json.
package vetosource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
	"github.com/DoyleJ11/mapveto-backend/internal/storage"
)

const defaultBase = "http://127.0.0.1:5000"

type Client struct {
	http    *http.Client
	baseURL string
	cache   storage.Loader
	logger  *zap.Logger
}

func New(opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: defaultBase,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// Load returns the current veto record. The server is asked once; on any
// failure or an empty answer the cache is consulted once. (nil, nil) means
// neither source has a veto.
func (c *Client) Load(ctx context.Context) (*engine.VetoRecord, error) {
	rec, err := c.fetch(ctx)
	if err == nil && rec != nil {
		c.refreshCache(ctx, rec)
		return rec, nil
	}
	if err != nil {
		c.logger.Debug("server unavailable, using cache", zap.Error(err))
	}

	if c.cache == nil {
		return nil, nil
	}
	cached, cerr := c.cache.Load(ctx, storage.DefaultKey)
	if errors.Is(cerr, storage.ErrNotFound) {
		return nil, nil
	}
	if cerr != nil {
		c.logger.Warn("cache unreadable", zap.Error(cerr))
		return nil, nil
	}
	return cached, nil
}

func (c *Client) fetch(ctx context.Context) (*engine.VetoRecord, error) {
	q := url.Values{}
	// cache buster
	q.Set("_", strconv.FormatInt(time.Now().UnixMilli(), 10))

	body, err := c.get(ctx, "/api/state", q)
	if err != nil {
		return nil, err
	}
	return storage.DecodeRecord(body)
}

func (c *Client) refreshCache(ctx context.Context, rec *engine.VetoRecord) {
	saver, ok := c.cache.(storage.Saver)
	if !ok {
		return
	}
	if err := saver.Save(ctx, storage.DefaultKey, rec); err != nil {
		c.logger.Warn("refresh cache", zap.Error(err))
	}
}

// SetLanguage asks the server to switch the UI language. Anything other than
// status "success" is an error carrying the server message.
func (c *Client) SetLanguage(ctx context.Context, lang string) error {
	if lang != "de" && lang != "en" {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}

	body, err := c.get(ctx, "/set_language/"+url.PathEscape(lang), nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// 400 still carries a status/message body
		body = []byte(apiErr.Message)
	} else if err != nil {
		return err
	}

	var res struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if jerr := json.Unmarshal(body, &res); jerr != nil {
		if apiErr != nil {
			return apiErr
		}
		return fmt.Errorf("decode set_language: %w", jerr)
	}
	if res.Status != "success" {
		msg := res.Message
		if msg == "" {
			msg = "language change rejected"
		}
		return errors.New(msg)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("veto server: %w", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("veto server: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &APIError{Status: res.StatusCode, Message: string(bytes.TrimSpace(b))}
	}
	return b, nil
}
