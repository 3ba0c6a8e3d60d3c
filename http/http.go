package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; pumpfun-api)"

// maxErrorBody caps how much of a non-2xx body is kept in a ResponseError.
const maxErrorBody = 200

type Client struct {
	StdClient *http.Client
	UserAgent string
	logger    logrus.FieldLogger
}

// New builds a client; timeout of zero leaves deadlines to the caller's context.
func New(timeout time.Duration, rawProxyURL string, logger logrus.FieldLogger) *Client {
	// Thread safe
	stdClient := &http.Client{Timeout: timeout}
	if timeout != 0 {
		logger.Debugf("HTTP request timeout is set to %s", timeout)
	}

	if rawProxyURL != "" {
		proxyURL, err := url.Parse(rawProxyURL)
		if err != nil {
			logger.Warnf("Failed to parse proxy URL: %s, error: %v, using system proxy", rawProxyURL, err)
		} else {
			transport := http.DefaultTransport.(*http.Transport).Clone()
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.Debugf("Using proxy %s", rawProxyURL)
			stdClient.Transport = transport
		}
	}
	return &Client{StdClient: stdClient, UserAgent: defaultUserAgent, logger: logger}
}

// Get issues a GET request and returns the body. Non-2xx replies come back as *ResponseError
// together with the body, since most of them still carry a json payload.
func (c *Client) Get(ctx context.Context, rawURL string, params, headers map[string]string) ([]byte, error) {
	if params != nil {
		parsedURL, err := url.Parse(rawURL)
		if err != nil {
			return nil, errors.Wrapf(err, "parse url %s", rawURL)
		}
		query := parsedURL.Query()
		for k, v := range params {
			query.Set(k, v)
		}
		parsedURL.RawQuery = query.Encode()
		rawURL = parsedURL.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.StdClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read body of %s", rawURL)
	}
	c.logger.WithField("elapsed", time.Since(start).String()).Debugf("GET %s - %s", rawURL, resp.Status)
	if !(resp.StatusCode >= 200 && resp.StatusCode < 300) {
		return respBytes, &ResponseError{StatusCode: resp.StatusCode, Status: resp.Status, Body: respBytes}
	}
	return respBytes, nil
}

type ResponseError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *ResponseError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return fmt.Sprintf("HTTP %s, body %s", e.Status, body)
}

func (e *ResponseError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsTimeout reports whether err was caused by a deadline or a network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
