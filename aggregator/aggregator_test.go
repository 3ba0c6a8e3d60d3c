package aggregator

import (
	"context"
	"math/rand"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pumpfun-api/metrics"
	"pumpfun-api/model"
	"pumpfun-api/provider"
)

const testMint = "CzLSujWBLFsSjncfkh59rUFqvafWcY5tzedWJSuypump"

type fakeMarket struct {
	pairs []model.TradingPair
	err   error
	delay time.Duration
	calls int32
}

func (f *fakeMarket) GetName() string { return "FakeDex" }

func (f *fakeMarket) GetPairs(ctx context.Context, mint string) ([]model.TradingPair, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.pairs, f.err
}

type fakeHolders struct {
	total   int64
	err     error
	delay   time.Duration
	panics  bool
	calls   int32
	gotMint atomic.Value
}

func (f *fakeHolders) GetName() string { return "FakeHolders" }

func (f *fakeHolders) GetHolderCount(ctx context.Context, mint string) (int64, error) {
	atomic.AddInt32(&f.calls, 1)
	f.gotMint.Store(mint)
	if f.panics {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.total, f.err
}

func examplePair() model.TradingPair {
	return model.TradingPair{
		BaseSymbol:   "ABC",
		BaseName:     "ABC Token",
		FDV:          1000000,
		VolumeH24:    200,
		LiquidityUSD: 500,
		PriceUSD:     0.002,
	}
}

func newTestAggregator(market MarketDataSource, holders HolderCountSource, m *metrics.Metrics) *Aggregator {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return New(Options{
		Market:        market,
		Holders:       holders,
		MarketTimeout: 200 * time.Millisecond,
		HolderTimeout: 100 * time.Millisecond,
		Logger:        logger,
		Metrics:       m,
	})
}

func TestAggregator_Aggregate(t *testing.T) {

	t.Run("example token", func(t *testing.T) {
		market := &fakeMarket{pairs: []model.TradingPair{examplePair()}}
		holders := &fakeHolders{total: 42}
		record, err := newTestAggregator(market, holders, nil).Aggregate(context.Background(), testMint)
		require.NoError(t, err)

		assert.Equal(t, testMint, record.Mint)
		assert.Equal(t, "ABC", record.Symbol)
		assert.Equal(t, float64(1000000), record.Marketcap.USD)
		assert.Equal(t, float64(200), record.Volume.USD24h)
		require.NotNil(t, record.Holders.Count)
		assert.Equal(t, int64(42), *record.Holders.Count)
		assert.Equal(t, "solscan_api", record.Holders.Source)
		assert.Equal(t, 0.002, record.PriceUSD)
		assert.Equal(t, testMint, holders.gotMint.Load())
	})

	t.Run("invalid mint makes no outbound call", func(t *testing.T) {
		for _, mint := range []string{"", "short", strings.Repeat("a", 31), strings.Repeat("a", 45)} {
			market := &fakeMarket{pairs: []model.TradingPair{examplePair()}}
			holders := &fakeHolders{total: 42}
			_, err := newTestAggregator(market, holders, nil).Aggregate(context.Background(), mint)
			assert.Equal(t, KindInvalidIdentifier, KindOf(err), "mint %q", mint)
			assert.Zero(t, atomic.LoadInt32(&market.calls))
			assert.Zero(t, atomic.LoadInt32(&holders.calls))
		}
	})

	t.Run("no pairs", func(t *testing.T) {
		_, err := newTestAggregator(&fakeMarket{}, &fakeHolders{total: 1}, nil).Aggregate(context.Background(), testMint)
		require.Error(t, err)
		assert.Equal(t, KindNotFound, KindOf(err))
		var aggErr *Error
		require.True(t, errors.As(err, &aggErr))
		assert.Equal(t, MsgNoPairs, aggErr.Message)
	})

	t.Run("upstream 404", func(t *testing.T) {
		market := &fakeMarket{err: errors.Wrap(provider.ErrNotFound, "DexScreener")}
		_, err := newTestAggregator(market, &fakeHolders{total: 1}, nil).Aggregate(context.Background(), testMint)
		var aggErr *Error
		require.True(t, errors.As(err, &aggErr))
		assert.Equal(t, KindNotFound, aggErr.Kind)
		assert.Equal(t, MsgNoData, aggErr.Message)
	})

	t.Run("upstream failure is internal", func(t *testing.T) {
		m := metrics.New()
		market := &fakeMarket{err: errors.New("connection refused")}
		_, err := newTestAggregator(market, &fakeHolders{total: 1}, m).Aggregate(context.Background(), testMint)
		var aggErr *Error
		require.True(t, errors.As(err, &aggErr))
		assert.Equal(t, KindInternal, aggErr.Kind)
		assert.Equal(t, MsgInternal, aggErr.Message)
		assert.NotContains(t, aggErr.Message, "refused")
		assert.Equal(t, float64(1), testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("FakeDex", metrics.OutcomeError)))
	})

	t.Run("market timeout", func(t *testing.T) {
		m := metrics.New()
		market := &fakeMarket{pairs: []model.TradingPair{examplePair()}, delay: 5 * time.Second}
		start := time.Now()
		_, err := newTestAggregator(market, &fakeHolders{total: 1}, m).Aggregate(context.Background(), testMint)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Equal(t, KindInternal, KindOf(err))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("FakeDex", metrics.OutcomeTimeout)))
	})

	t.Run("holder failure degrades", func(t *testing.T) {
		m := metrics.New()
		market := &fakeMarket{pairs: []model.TradingPair{examplePair()}}
		record, err := newTestAggregator(market, &fakeHolders{err: errors.New("HTTP 500")}, m).
			Aggregate(context.Background(), testMint)
		require.NoError(t, err)
		assert.Nil(t, record.Holders.Count)
		assert.Equal(t, "unavailable", record.Holders.Source)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.HolderFallbacks))
	})

	t.Run("holder timeout degrades", func(t *testing.T) {
		market := &fakeMarket{pairs: []model.TradingPair{examplePair()}}
		holders := &fakeHolders{total: 42, delay: 5 * time.Second}
		start := time.Now()
		record, err := newTestAggregator(market, holders, nil).Aggregate(context.Background(), testMint)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.Nil(t, record.Holders.Count)
		assert.Equal(t, "unavailable", record.Holders.Source)
	})

	t.Run("holder panic degrades", func(t *testing.T) {
		market := &fakeMarket{pairs: []model.TradingPair{examplePair()}}
		record, err := newTestAggregator(market, &fakeHolders{panics: true}, nil).Aggregate(context.Background(), testMint)
		require.NoError(t, err)
		assert.Nil(t, record.Holders.Count)
	})

	t.Run("zero holders reported as unavailable", func(t *testing.T) {
		market := &fakeMarket{pairs: []model.TradingPair{examplePair()}}
		record, err := newTestAggregator(market, &fakeHolders{total: 0}, nil).Aggregate(context.Background(), testMint)
		require.NoError(t, err)
		assert.Nil(t, record.Holders.Count)
		assert.Equal(t, "unavailable", record.Holders.Source)
	})

	t.Run("repeated requests differ only in timestamp", func(t *testing.T) {
		market := &fakeMarket{pairs: []model.TradingPair{examplePair(), {LiquidityUSD: 10}}}
		agg := newTestAggregator(market, &fakeHolders{total: 7}, nil)
		first, err := agg.Aggregate(context.Background(), testMint)
		require.NoError(t, err)
		second, err := agg.Aggregate(context.Background(), testMint)
		require.NoError(t, err)

		assert.LessOrEqual(t, first.Timestamp, second.Timestamp)
		first.Timestamp, second.Timestamp = "", ""
		assert.Equal(t, first, second)
	})
}

func TestValidateMint(t *testing.T) {
	cases := []struct {
		name   string
		mint   string
		strict bool
		valid  bool
	}{
		{"empty", "", false, false},
		{"short", "short", false, false},
		{"31 chars", strings.Repeat("a", 31), false, false},
		{"32 chars", strings.Repeat("a", 32), false, true},
		{"44 chars", testMint, false, true},
		{"45 chars", testMint + "x", false, false},
		{"not base58 is fine by default", strings.Repeat("0", 40), false, true},
		{"strict rejects non base58", strings.Repeat("0", 40), true, false},
		{"strict accepts public key", "So11111111111111111111111111111111111111112", true, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateMint(c.mint, c.strict)
			if c.valid {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, KindInvalidIdentifier, KindOf(err))
			}
		})
	}
}

func TestSelectPair(t *testing.T) {

	t.Run("empty", func(t *testing.T) {
		_, ok := SelectPair(nil)
		assert.False(t, ok)
	})

	t.Run("highest liquidity", func(t *testing.T) {
		pair, ok := SelectPair([]model.TradingPair{
			{PairAddress: "a", LiquidityUSD: 10},
			{PairAddress: "b", LiquidityUSD: 300},
			{PairAddress: "c", LiquidityUSD: 20},
		})
		require.True(t, ok)
		assert.Equal(t, "b", pair.PairAddress)
	})

	t.Run("first seen wins a tie", func(t *testing.T) {
		pair, _ := SelectPair([]model.TradingPair{
			{PairAddress: "a", LiquidityUSD: 5},
			{PairAddress: "b", LiquidityUSD: 300},
			{PairAddress: "c", LiquidityUSD: 300},
		})
		assert.Equal(t, "b", pair.PairAddress)
	})

	t.Run("all zero keeps the first", func(t *testing.T) {
		pair, _ := SelectPair([]model.TradingPair{{PairAddress: "a"}, {PairAddress: "b"}})
		assert.Equal(t, "a", pair.PairAddress)
	})

	t.Run("selected liquidity is the maximum", func(t *testing.T) {
		rnd := rand.New(rand.NewSource(1))
		for i := 0; i < 200; i++ {
			pairs := make([]model.TradingPair, 1+rnd.Intn(10))
			for j := range pairs {
				pairs[j] = model.TradingPair{PairAddress: string(rune('a' + j)), LiquidityUSD: float64(rnd.Intn(5))}
			}
			best, ok := SelectPair(pairs)
			require.True(t, ok)
			firstMax := -1
			for j, p := range pairs {
				assert.GreaterOrEqual(t, best.LiquidityUSD, p.LiquidityUSD)
				if firstMax == -1 && p.LiquidityUSD == best.LiquidityUSD {
					firstMax = j
				}
			}
			assert.Equal(t, pairs[firstMax].PairAddress, best.PairAddress)
		}
	})
}

func TestCompose(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("defaults for missing fields", func(t *testing.T) {
		record := Compose(testMint, model.TradingPair{}, model.HolderCount{}, now)
		assert.Equal(t, "UNKNOWN", record.Symbol)
		assert.Equal(t, "Unknown Token", record.Name)
		assert.Equal(t, "unknown", record.Dex)
		assert.Nil(t, record.PairAddress)
		assert.Nil(t, record.Holders.Count)
		assert.Equal(t, "unavailable", record.Holders.Source)
		assert.Zero(t, record.Marketcap.USD)
		assert.Equal(t, "2024-05-01T12:00:00.000Z", record.Timestamp)
	})

	t.Run("fixed metadata", func(t *testing.T) {
		pair := examplePair()
		pair.DexID = "raydium"
		pair.PairAddress = "Pair1"
		record := Compose(testMint, pair, model.HolderCountOf(42), now)
		assert.Equal(t, "fully_diluted_valuation", record.Marketcap.Type)
		assert.Equal(t, "24_hours", record.Volume.Window)
		assert.Equal(t, model.DataSources{
			PriceAndVolume: "dexscreener_api",
			HolderCount:    "solscan_api",
			DataMethod:     "on_chain_dex_aggregation",
		}, record.DataSources)
		assert.Equal(t, "raydium", record.Dex)
		require.NotNil(t, record.PairAddress)
		assert.Equal(t, "Pair1", *record.PairAddress)
		assert.Equal(t, "solscan_api", record.Holders.Source)
	})
}
