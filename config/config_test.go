package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, ":3000", cfg.Addr())
		assert.Equal(t, DefaultDexScreenerURL, cfg.DexScreenerURL)
		assert.Equal(t, DefaultSolscanURL, cfg.SolscanURL)
		assert.Equal(t, 10*time.Second, cfg.MarketTimeout)
		assert.Equal(t, 5*time.Second, cfg.HolderTimeout)
		assert.Equal(t, "PumpFunAPI/1.0", cfg.HolderUserAgent)
		assert.False(t, cfg.StrictMint)
	})

	t.Run("PORT from environment", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		t.Setenv("HOLDER_TIMEOUT", "2s")
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 2*time.Second, cfg.HolderTimeout)
	})

	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		cfg, err := Parse([]string{"--port", "9090", "--strict-mint"})
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)
		assert.True(t, cfg.StrictMint)
	})

	t.Run("config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pumpfun_api.yml")
		content := "market-timeout: 3s\ndexscreener-url: http://dex.local\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Parse([]string{"--config-file", path})
		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, cfg.MarketTimeout)
		assert.Equal(t, "http://dex.local", cfg.DexScreenerURL)
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := Parse([]string{"--config-file", filepath.Join(t.TempDir(), "nope.yml")})
		assert.Error(t, err)
	})

	t.Run("invalid port", func(t *testing.T) {
		_, err := Parse([]string{"--port", "0"})
		assert.Error(t, err)
	})

	t.Run("version", func(t *testing.T) {
		_, err := Parse([]string{"--version"})
		assert.ErrorIs(t, err, ErrShowVersion)
	})

	t.Run("help", func(t *testing.T) {
		_, err := Parse([]string{"--help"})
		assert.ErrorIs(t, err, pflag.ErrHelp)
	})
}

func TestParseProbe(t *testing.T) {

	t.Run("sample mints by default", func(t *testing.T) {
		cfg, err := ParseProbe(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultAPIURL, cfg.APIURL)
		assert.Equal(t, SampleMints, cfg.Mints)
		assert.Equal(t, supportedColumns(), cfg.Columns)
	})

	t.Run("API_URL and mints from args", func(t *testing.T) {
		t.Setenv("API_URL", "http://example.com:8000/")
		cfg, err := ParseProbe([]string{"mintA", "mintB"})
		require.NoError(t, err)
		assert.Equal(t, "http://example.com:8000", cfg.APIURL)
		assert.Equal(t, []string{"mintA", "mintB"}, cfg.Mints)
	})
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(logrus.New(), &buf, true, "json")
	logger.WithField("provider", "dexscreener").Debug("hello")

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), `"provider":"dexscreener"`)
}
