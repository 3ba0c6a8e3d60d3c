// Command pumpfun-probe smoke-tests a running pumpfun-api and renders the fetched tokens as a table.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"pumpfun-api/config"
	"pumpfun-api/http"
	"pumpfun-api/probe"
	"pumpfun-api/writer"
)

func main() {
	cfg, err := config.ParseProbe(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logrus.Fatal(err)
	}
	logger := config.SetupLogging(cfg.Debug, "text")

	tw, err := writer.NewTableWriter(colorable.NewColorableStdout(), cfg.Columns) // For Windows
	if err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Refresh != 0 {
		logger.Infof("Auto refresh on every %d seconds", cfg.Refresh)
	}
	client := http.New(time.Duration(cfg.Timeout)*time.Second, "", logger)
	prober := probe.New(cfg.APIURL, client, logger)
	logger.Infof("Probing %s with %d mints", cfg.APIURL, len(cfg.Mints))

	for {
		report, err := prober.Run(ctx, cfg.Mints)
		if err != nil {
			logger.Fatal(err)
		}
		if err := tw.Render(report.Records); err != nil {
			logger.Fatal(err)
		}
		failed := report.Failed()
		for _, c := range failed {
			logger.Errorf("%s: %s", c.Name, c.Detail)
		}
		if cfg.Refresh == 0 {
			if len(failed) != 0 {
				os.Exit(1)
			}
			logger.Infof("All %d checks passed", len(report.Checks))
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(cfg.Refresh) * time.Second):
		}
	}
}
