package config

import "time"

const (
	DefaultPort            = 3000
	DefaultDexScreenerURL  = "https://api.dexscreener.com"
	DefaultSolscanURL      = "https://api.solscan.io"
	DefaultMarketTimeout   = 10 * time.Second
	DefaultHolderTimeout   = 5 * time.Second
	DefaultHolderUserAgent = "PumpFunAPI/1.0"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultAPIURL          = "http://localhost:3000"
)

const (
	ColumnSymbol       = "Symbol"
	ColumnMarketCap    = "Market Cap"
	ColumnVolume24h    = "Volume(24h)"
	ColumnHolders      = "Holders"
	ColumnPrice        = "Price"
	ColumnChange24hPct = "%Change(24h)"
)

func supportedColumns() []string {
	return []string{ColumnSymbol, ColumnMarketCap, ColumnVolume24h, ColumnHolders, ColumnPrice, ColumnChange24hPct}
}

type Config struct {
	Port            int           `mapstructure:"port"`
	DexScreenerURL  string        `mapstructure:"dexscreener-url"`
	SolscanURL      string        `mapstructure:"solscan-url"`
	MarketTimeout   time.Duration `mapstructure:"market-timeout"`
	HolderTimeout   time.Duration `mapstructure:"holder-timeout"`
	HolderUserAgent string        `mapstructure:"holder-user-agent"`
	Proxy           string        `mapstructure:"proxy"`
	StrictMint      bool          `mapstructure:"strict-mint"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	Debug           bool          `mapstructure:"debug"`
	LogFormat       string        `mapstructure:"log-format"`
}

// ProbeConfig drives the smoke-test client in cmd/pumpfun-probe.
type ProbeConfig struct {
	APIURL  string   `mapstructure:"api-url"`
	Refresh int      `mapstructure:"refresh"`
	Timeout int      `mapstructure:"timeout"`
	Columns []string `mapstructure:"show"`
	Debug   bool     `mapstructure:"debug"`
	Mints   []string `mapstructure:"-"`
}
