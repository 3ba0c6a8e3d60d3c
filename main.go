// Command pumpfun-api serves aggregated market data of pump.fun tokens over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"pumpfun-api/aggregator"
	"pumpfun-api/config"
	"pumpfun-api/http"
	"pumpfun-api/metrics"
	"pumpfun-api/provider"
	"pumpfun-api/server"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	switch {
	case errors.Is(err, pflag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, config.ErrShowVersion):
		fmt.Fprintf(os.Stderr, "Version %s", config.Version)
		if config.Rev != "" {
			fmt.Fprintf(os.Stderr, ", build %s", config.Rev)
		}
		fmt.Fprintln(os.Stderr)
		os.Exit(0)
	case err != nil:
		logrus.Fatal(err)
	}
	logger := config.SetupLogging(cfg.Debug, cfg.LogFormat)

	// Deadlines come from the per-provider contexts
	httpClient := http.New(0, cfg.Proxy, logger)
	dex, err := provider.NewDexScreenerClient(cfg.DexScreenerURL, httpClient)
	if err != nil {
		logger.Fatal(err)
	}
	solscan, err := provider.NewSolscanClient(cfg.SolscanURL, cfg.HolderUserAgent, httpClient)
	if err != nil {
		logger.Fatal(err)
	}

	m := metrics.New()
	agg := aggregator.New(aggregator.Options{
		Market:        dex,
		Holders:       solscan,
		MarketTimeout: cfg.MarketTimeout,
		HolderTimeout: cfg.HolderTimeout,
		StrictMint:    cfg.StrictMint,
		Logger:        logger,
		Metrics:       m,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"version":     config.Version,
		"dexscreener": cfg.DexScreenerURL,
		"solscan":     cfg.SolscanURL,
		"strict_mint": cfg.StrictMint,
	}).Info("Starting pumpfun-api")
	if err := server.New(agg, logger, m).ListenAndServe(ctx, cfg.Addr(), cfg.ShutdownTimeout); err != nil {
		logger.Fatal(err)
	}
	logger.Info("Server stopped")
}
