package provider

import (
	"math"
	"net/url"
	"path"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"pumpfun-api/http"
)

// ErrNotFound is returned when a provider answers 404 for a mint.
var ErrNotFound = errors.New("not found")

type providerBaseClient struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
}

func newProviderBase(rawURL string, httpClient *http.Client) (*providerBaseClient, error) {
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse base url %q", rawURL)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", rawURL)
	}
	return &providerBaseClient{baseURL, httpClient}, nil
}

// buildURL joins endpoint onto the base path and appends each segment escaped, so a
// segment holding "/" or ".." stays a single path element.
func (client *providerBaseClient) buildURL(endpoint string, segments ...string) string {
	baseURL := *client.BaseURL
	baseURL.Path = path.Join(baseURL.Path, endpoint)
	baseURL.RawPath = ""
	if len(segments) != 0 {
		rawPath := baseURL.EscapedPath()
		for _, segment := range segments {
			baseURL.Path += "/" + segment
			rawPath += "/" + url.PathEscape(segment)
		}
		baseURL.RawPath = rawPath
	}
	return baseURL.String()
}

// numberAt reads a numeric field that may be encoded either as a JSON number or as a
// numeric string. Anything else, including NaN and infinities, reads as 0.
func numberAt(data []byte, keys ...string) float64 {
	value, dataType, _, err := jsonparser.Get(data, keys...)
	if err != nil {
		return 0
	}
	d, ok := parseDecimal(value, dataType)
	if !ok {
		return 0
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

func parseDecimal(value []byte, dataType jsonparser.ValueType) (decimal.Decimal, bool) {
	raw := string(value)
	switch dataType {
	case jsonparser.Number:
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return decimal.Zero, false
		}
		raw = strings.TrimSpace(s)
	default:
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func stringAt(data []byte, keys ...string) string {
	s, err := jsonparser.GetString(data, keys...)
	if err != nil {
		return ""
	}
	return s
}
