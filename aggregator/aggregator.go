// Package aggregator merges market data and holder counts of a pump.fun token into one record.
package aggregator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pumpfun-api/http"
	"pumpfun-api/metrics"
	"pumpfun-api/model"
	"pumpfun-api/provider"
)

// MarketDataSource lists the trading pairs of a mint. An upstream 404 must be reported
// as provider.ErrNotFound.
type MarketDataSource interface {
	GetName() string
	GetPairs(ctx context.Context, mint string) ([]model.TradingPair, error)
}

type HolderCountSource interface {
	GetName() string
	GetHolderCount(ctx context.Context, mint string) (int64, error)
}

type Options struct {
	Market        MarketDataSource
	Holders       HolderCountSource
	MarketTimeout time.Duration
	HolderTimeout time.Duration
	StrictMint    bool
	Logger        logrus.FieldLogger
	Metrics       *metrics.Metrics
	Now           func() time.Time
}

type Aggregator struct {
	market        MarketDataSource
	holders       HolderCountSource
	marketTimeout time.Duration
	holderTimeout time.Duration
	strictMint    bool
	logger        logrus.FieldLogger
	metrics       *metrics.Metrics
	now           func() time.Time
}

func New(opts Options) *Aggregator {
	a := &Aggregator{
		market:        opts.Market,
		holders:       opts.Holders,
		marketTimeout: opts.MarketTimeout,
		holderTimeout: opts.HolderTimeout,
		strictMint:    opts.StrictMint,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		now:           opts.Now,
	}
	if a.logger == nil {
		a.logger = logrus.StandardLogger()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// Aggregate validates the mint, looks up its market data and holder count and composes
// the served record. A failed holder lookup never fails the call; every returned error
// is an *Error.
func (a *Aggregator) Aggregate(ctx context.Context, mint string) (*model.TokenRecord, error) {
	if err := ValidateMint(mint, a.strictMint); err != nil {
		return nil, err
	}
	logger := a.logger.WithField("mint", mint)

	holderCtx, cancelHolders := context.WithTimeout(ctx, a.holderTimeout)
	defer cancelHolders()
	holderCh := a.getHolderCountAsync(holderCtx, mint, logger)

	pair, err := a.getMainPair(ctx, mint, logger)
	if err != nil {
		return nil, err
	}

	holders := <-holderCh
	return Compose(mint, pair, holders, a.now()), nil
}

func (a *Aggregator) getMainPair(ctx context.Context, mint string, logger logrus.FieldLogger) (model.TradingPair, error) {
	ctx, cancel := context.WithTimeout(ctx, a.marketTimeout)
	defer cancel()

	name := a.market.GetName()
	logger = logger.WithField("provider", name)
	start := time.Now()
	pairs, err := a.market.GetPairs(ctx, mint)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			a.metrics.ObserveUpstream(name, metrics.OutcomeNotFound, elapsed)
			logger.WithError(err).Warn("Market data provider has no data")
			return model.TradingPair{}, &Error{Kind: KindNotFound, Message: MsgNoData, Err: err}
		}
		a.metrics.ObserveUpstream(name, outcomeOf(err), elapsed)
		logger.WithError(err).WithField("elapsed", elapsed.String()).Error("Market data fetch failed")
		return model.TradingPair{}, &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
	}
	a.metrics.ObserveUpstream(name, metrics.OutcomeSuccess, elapsed)

	pair, ok := SelectPair(pairs)
	if !ok {
		logger.Info("No trading pairs listed")
		return model.TradingPair{}, &Error{Kind: KindNotFound, Message: MsgNoPairs}
	}
	logger.WithFields(logrus.Fields{
		"pairs":     len(pairs),
		"dex":       pair.DexID,
		"pair":      pair.PairAddress,
		"liquidity": pair.LiquidityUSD,
	}).Debug("Selected most liquid pair")
	return pair, nil
}

// Return a chan that always receives exactly one HolderCount, the zero value on any failure
func (a *Aggregator) getHolderCountAsync(ctx context.Context, mint string, logger logrus.FieldLogger) <-chan model.HolderCount {
	doneCh := make(chan model.HolderCount, 1)
	go func() {
		var holders model.HolderCount
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("Holder count fetch panicked: %v", r)
				a.metrics.HolderUnavailable()
			}
			doneCh <- holders
		}()
		holders = a.getHolderCount(ctx, mint, logger)
	}()
	return doneCh
}

func (a *Aggregator) getHolderCount(ctx context.Context, mint string, logger logrus.FieldLogger) model.HolderCount {
	name := a.holders.GetName()
	logger = logger.WithField("provider", name)
	start := time.Now()
	total, err := a.holders.GetHolderCount(ctx, mint)
	elapsed := time.Since(start)
	if err != nil {
		a.metrics.ObserveUpstream(name, outcomeOf(err), elapsed)
		a.metrics.HolderUnavailable()
		logger.WithError(err).WithField("elapsed", elapsed.String()).Warn("Holder count fetch failed")
		return model.HolderCount{}
	}
	a.metrics.ObserveUpstream(name, metrics.OutcomeSuccess, elapsed)
	if total <= 0 {
		// a zero total is what the provider sends for tokens it has not indexed
		a.metrics.HolderUnavailable()
		logger.Debugf("Holder count is %d, reporting it as unavailable", total)
		return model.HolderCount{}
	}
	return model.HolderCountOf(total)
}

func outcomeOf(err error) string {
	if http.IsTimeout(err) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeError
}
