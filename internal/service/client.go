// Package service exposes one typed function per backend endpoint. Every call
// goes through the request pipeline and the envelope unwrapper; callers get a
// typed payload or an error and never look at the wire shape.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/envelope"
	"github.com/gxmovies/storefront-client/internal/gateway"
	"github.com/gxmovies/storefront-client/internal/observability"
)

// Request describes one backend call. It is not modified after it is built.
type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
}

// Client sends Requests through the pipeline.
type Client struct {
	baseURL string
	doer    gateway.Doer
	logger  *zap.Logger
}

// NewClient returns a client rooted at baseURL, e.g. http://localhost:8080/api.
func NewClient(baseURL string, doer gateway.Doer, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  observability.OrNop(logger),
	}
}

// handleRequest performs r and decodes the envelope data into out.
func (c *Client) handleRequest(ctx context.Context, r Request, out any) error {
	body, err := c.send(ctx, r)
	if err == nil {
		err = envelope.Unwrap(body, out)
	}
	if err != nil {
		c.logFailure(r, err)
		return err
	}
	return nil
}

// handleMessage performs r and returns the message of a successful envelope.
func (c *Client) handleMessage(ctx context.Context, r Request) (string, error) {
	body, err := c.send(ctx, r)
	if err != nil {
		c.logFailure(r, err)
		return "", err
	}
	msg, err := envelope.Message(body)
	if err != nil {
		c.logFailure(r, err)
		return "", err
	}
	return msg, nil
}

// download performs r and copies the raw body to w.
func (c *Client) download(ctx context.Context, r Request, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		c.logFailure(r, err)
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		c.logFailure(r, err)
		return n, fmt.Errorf("copy %s: %w", r.Path, err)
	}
	return n, nil
}

func (c *Client) send(ctx context.Context, r Request) ([]byte, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Path, err)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, r Request) (*http.Response, error) {
	req, err := c.newHTTPRequest(ctx, r)
	if err != nil {
		return nil, err
	}
	return c.doer.Do(req)
}

func (c *Client) newHTTPRequest(ctx context.Context, r Request) (*http.Request, error) {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		raw, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", r.Path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) logFailure(r Request, err error) {
	c.logger.Error("api error",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Error(err),
	)
}
