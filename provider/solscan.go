package provider

import (
	"context"
	"math"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"pumpfun-api/http"
)

// https://public-api.solscan.io/docs
type SolscanClient struct {
	providerBaseClient
	UserAgent string
}

func NewSolscanClient(rawURL, userAgent string, httpClient *http.Client) (*SolscanClient, error) {
	base, err := newProviderBase(rawURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &SolscanClient{providerBaseClient: *base, UserAgent: userAgent}, nil
}

var maxHolderCount = decimal.NewFromInt(math.MaxInt64)

func (client *SolscanClient) GetName() string {
	return "Solscan"
}

// GetHolderCount asks for a single-entry page of holders, only the total is used.
func (client *SolscanClient) GetHolderCount(ctx context.Context, mint string) (int64, error) {
	var headers map[string]string
	if client.UserAgent != "" {
		headers = map[string]string{"User-Agent": client.UserAgent}
	}
	respBytes, err := client.HTTPClient.Get(ctx, client.buildURL("/token/holders"), map[string]string{
		"token":  mint,
		"offset": "0",
		"size":   "1",
	}, headers)
	if err != nil {
		return 0, errors.Wrapf(err, "%s - get holders of %s", client.GetName(), mint)
	}

	value, dataType, _, err := jsonparser.Get(respBytes, "total")
	if err != nil {
		return 0, errors.Wrapf(err, "%s - read total holders of %s", client.GetName(), mint)
	}
	total, ok := parseDecimal(value, dataType)
	if !ok {
		return 0, errors.Errorf("%s - unexpected total %q for %s", client.GetName(), value, mint)
	}
	if total.GreaterThan(maxHolderCount) {
		return 0, errors.Errorf("%s - total %s of %s overflows int64", client.GetName(), total, mint)
	}
	return total.IntPart(), nil
}
