package aggregator

import (
	"time"

	"pumpfun-api/model"
)

const (
	unknownSymbol = "UNKNOWN"
	unknownName   = "Unknown Token"
	unknownDex    = "unknown"

	marketcapType        = "fully_diluted_valuation"
	marketcapDescription = "Market cap calculated as: current price × total supply"
	volumeWindow         = "24_hours"
	volumeDescription    = "Total trading volume across all DEXs in the last 24 hours"
	holdersDescription   = "Number of unique wallet addresses holding this token"

	sourceDexScreener = "dexscreener_api"
	dataMethod        = "on_chain_dex_aggregation"
)

// Compose merges the selected pair and the holder lookup into the served record.
func Compose(mint string, pair model.TradingPair, holders model.HolderCount, now time.Time) *model.TokenRecord {
	record := &model.TokenRecord{
		Mint:   mint,
		Symbol: orDefault(pair.BaseSymbol, unknownSymbol),
		Name:   orDefault(pair.BaseName, unknownName),
		Marketcap: model.Marketcap{
			USD:         pair.FDV,
			Type:        marketcapType,
			Description: marketcapDescription,
		},
		Volume: model.Volume{
			USD24h:      pair.VolumeH24,
			Window:      volumeWindow,
			Description: volumeDescription,
		},
		Holders: model.Holders{
			Source:      model.HolderSourceUnavailable,
			Description: holdersDescription,
		},
		PriceUSD:       pair.PriceUSD,
		PriceChange24h: pair.PriceChangeH24,
		LiquidityUSD:   pair.LiquidityUSD,
		Dex:            orDefault(pair.DexID, unknownDex),
		DataSources: model.DataSources{
			PriceAndVolume: sourceDexScreener,
			HolderCount:    model.HolderSourceSolscan,
			DataMethod:     dataMethod,
		},
		Timestamp: model.FormatTimestamp(now),
	}
	if holders.Available {
		count := holders.Count
		record.Holders.Count = &count
		record.Holders.Source = model.HolderSourceSolscan
	}
	if pair.PairAddress != "" {
		addr := pair.PairAddress
		record.PairAddress = &addr
	}
	return record
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
