package provider

import (
	"context"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"

	"pumpfun-api/http"
	"pumpfun-api/model"
)

// https://docs.dexscreener.com/api/reference
type DexScreenerClient struct {
	providerBaseClient
}

func NewDexScreenerClient(rawURL string, httpClient *http.Client) (*DexScreenerClient, error) {
	base, err := newProviderBase(rawURL, httpClient)
	if err != nil {
		return nil, err
	}
	return &DexScreenerClient{providerBaseClient: *base}, nil
}

func (client *DexScreenerClient) GetName() string {
	return "DexScreener"
}

// GetPairs returns every pair DexScreener lists for the mint, in the order it sent them.
// An unlisted token yields an empty slice, an upstream 404 yields ErrNotFound.
func (client *DexScreenerClient) GetPairs(ctx context.Context, mint string) ([]model.TradingPair, error) {
	respBytes, err := client.HTTPClient.Get(ctx, client.buildURL("/latest/dex/tokens", mint), nil, nil)
	if err != nil {
		var respErr *http.ResponseError
		if errors.As(err, &respErr) && respErr.NotFound() {
			return nil, errors.Wrapf(ErrNotFound, "%s - pairs of %s", client.GetName(), mint)
		}
		return nil, errors.Wrapf(err, "%s - get pairs of %s", client.GetName(), mint)
	}
	pairs, err := parsePairs(respBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "%s - decode pairs of %s", client.GetName(), mint)
	}
	return pairs, nil
}

func parsePairs(respBytes []byte) ([]model.TradingPair, error) {
	value, dataType, _, err := jsonparser.Get(respBytes, "pairs")
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, nil
		}
		return nil, err
	}
	switch dataType {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Array:
	default:
		return nil, errors.Errorf("unexpected type %s of pairs", dataType)
	}

	var pairs []model.TradingPair
	_, err = jsonparser.ArrayEach(value, func(pair []byte, _ jsonparser.ValueType, _ int, _ error) {
		pairs = append(pairs, model.TradingPair{
			BaseSymbol:     stringAt(pair, "baseToken", "symbol"),
			BaseName:       stringAt(pair, "baseToken", "name"),
			FDV:            numberAt(pair, "fdv"),
			VolumeH24:      numberAt(pair, "volume", "h24"),
			PriceChangeH24: numberAt(pair, "priceChange", "h24"),
			LiquidityUSD:   numberAt(pair, "liquidity", "usd"),
			PriceUSD:       numberAt(pair, "priceUsd"),
			DexID:          stringAt(pair, "dexId"),
			PairAddress:    stringAt(pair, "pairAddress"),
		})
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}
