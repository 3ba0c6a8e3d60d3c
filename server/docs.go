package server

import "pumpfun-api/config"

const exampleMint = "CzLSujWBLFsSjncfkh59rUFqvafWcY5tzedWJSuypump"

type docsResponse struct {
	Service       string        `json:"service"`
	Version       string        `json:"version"`
	Endpoints     docsEndpoints `json:"endpoints"`
	Example       string        `json:"example"`
	Documentation docsBody      `json:"documentation"`
}

type docsEndpoints struct {
	TokenData string `json:"token_data"`
	Health    string `json:"health"`
}

type docsBody struct {
	Mint           string          `json:"mint"`
	ResponseFields docsFields      `json:"response_fields"`
	DataSources    docsDataSources `json:"data_sources"`
}

type docsFields struct {
	Marketcap string `json:"marketcap"`
	Volume    string `json:"volume"`
	Holders   string `json:"holders"`
}

type docsDataSources struct {
	PriceVolume string `json:"price_volume"`
	Holders     string `json:"holders"`
}

func newDocs() docsResponse {
	return docsResponse{
		Service: "Pump.fun Token API",
		Version: config.Version,
		Endpoints: docsEndpoints{
			TokenData: "GET /api/pumpfun/:mint",
			Health:    "GET /health",
		},
		Example: "/api/pumpfun/" + exampleMint,
		Documentation: docsBody{
			Mint: "Solana token mint address (32-44 characters)",
			ResponseFields: docsFields{
				Marketcap: "Fully diluted valuation (price × total supply)",
				Volume:    "24-hour trading volume in USD",
				Holders:   "Number of unique token holders",
			},
			DataSources: docsDataSources{
				PriceVolume: "DexScreener API (aggregates Raydium, Orca, etc.)",
				Holders:     "Solscan API (on-chain token account parser)",
			},
		},
	}
}
