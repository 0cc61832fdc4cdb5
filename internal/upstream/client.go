package upstream

import (
	"context"
	"fmt"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// DefaultReadBufferSize caps the response header size. Apps Script answers
// carry long CSP and cookie headers that overflow fasthttp's 4 KiB default.
const DefaultReadBufferSize = 64 << 10

type Config struct {
	URL               string
	MaxRedirects      int
	RequestsPerSecond float64
	ReadBufferSize    int
}

// Response is the raw upstream answer, before any validation.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client performs the single GET against the configured upstream. It never
// retries; a failed call is returned to the caller as a *TransportError.
type Client struct {
	url          string
	maxRedirects int
	http         *fasthttp.Client
	limiter      *rate.Limiter
}

func NewClient(cfg Config) *Client {
	readBufferSize := cfg.ReadBufferSize
	if readBufferSize <= 0 {
		readBufferSize = DefaultReadBufferSize
	}

	c := &Client{
		url:          cfg.URL,
		maxRedirects: cfg.MaxRedirects,
		http: &fasthttp.Client{
			Name:           "results-proxy",
			ReadBufferSize: readBufferSize,
		},
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) Fetch(ctx context.Context) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{URL: c.url, Err: fmt.Errorf("waiting for upstream slot: %w", err)}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	var err error
	if c.maxRedirects > 0 {
		err = c.http.DoRedirects(req, resp, c.maxRedirects)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}

	return &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: string(resp.Header.ContentType()),
		Body:        append([]byte(nil), resp.Body()...),
	}, nil
}
