package model

// TradingPair is one venue's listing of a token as reported by the market data provider.
// Numeric fields are 0 when the provider omitted them or sent something unparseable.
type TradingPair struct {
	BaseSymbol     string
	BaseName       string
	FDV            float64
	VolumeH24      float64
	PriceChangeH24 float64
	LiquidityUSD   float64
	PriceUSD       float64
	DexID          string
	PairAddress    string
}

// HolderCount is the outcome of the best-effort holder lookup.
// The zero value means the count is unavailable.
type HolderCount struct {
	Count     int64
	Available bool
}

func HolderCountOf(n int64) HolderCount {
	return HolderCount{Count: n, Available: true}
}

const (
	HolderSourceSolscan     = "solscan_api"
	HolderSourceUnavailable = "unavailable"
)

// TokenRecord is the aggregated payload served for a mint.
type TokenRecord struct {
	Mint           string      `json:"mint"`
	Symbol         string      `json:"symbol"`
	Name           string      `json:"name"`
	Marketcap      Marketcap   `json:"marketcap"`
	Volume         Volume      `json:"volume"`
	Holders        Holders     `json:"holders"`
	PriceUSD       float64     `json:"price_usd"`
	PriceChange24h float64     `json:"price_change_24h"`
	LiquidityUSD   float64     `json:"liquidity_usd"`
	Dex            string      `json:"dex"`
	PairAddress    *string     `json:"pair_address"`
	DataSources    DataSources `json:"data_sources"`
	Timestamp      string      `json:"timestamp"`
}

type Marketcap struct {
	USD         float64 `json:"usd"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
}

type Volume struct {
	USD24h      float64 `json:"usd_24h"`
	Window      string  `json:"window"`
	Description string  `json:"description"`
}

type Holders struct {
	Count       *int64 `json:"count"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

type DataSources struct {
	PriceAndVolume string `json:"price_and_volume"`
	HolderCount    string `json:"holder_count"`
	DataMethod     string `json:"data_method"`
}

// ErrorResponse is the body of every non-200 reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
