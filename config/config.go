package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Will be set by go-build
var (
	Version = "1.0.0"
	Rev     string
)

// ErrShowVersion is returned by Parse when --version was requested.
var ErrShowVersion = errors.New("show version")

// SampleMints are queried by the probe when no mint is given on the command line.
var SampleMints = []string{
	"CzLSujWBLFsSjncfkh59rUFqvafWcY5tzedWJSuypump", // GIGA
	"LocK1nWE7jNAQ1KwzxaMGfQ5u5GWWLJKwF19WwK9pump", // LOCKIN
}

// Parse reads server settings from command-line args, environment and an optional
// pumpfun_api.yml, in that order of precedence.
func Parse(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("pumpfun-api", pflag.ContinueOnError)
	showVersion := fs.BoolP("version", "v", false, "Show version number")
	fs.BoolP("debug", "d", false, "Enable debug mode")
	fs.String("log-format", "text", `Log format, "text" or "json"`)
	fs.IntP("port", "p", DefaultPort, "Port to listen on (env PORT)")
	fs.String("dexscreener-url", DefaultDexScreenerURL, "Base URL of the DexScreener API")
	fs.String("solscan-url", DefaultSolscanURL, "Base URL of the Solscan API")
	fs.Duration("market-timeout", DefaultMarketTimeout, "Timeout of the market data request")
	fs.Duration("holder-timeout", DefaultHolderTimeout, "Timeout of the holder count request")
	fs.String("holder-user-agent", DefaultHolderUserAgent, "User-Agent sent to the holder count provider")
	fs.String("proxy", "", "Proxy used when sending HTTP request \n(eg. "+
		"\"http://localhost:7777\", \"https://localhost:7777\", \"socks5://localhost:1080\")")
	fs.Bool("strict-mint", false, "Reject mints that do not decode as a base58 Solana public key")
	fs.Duration("shutdown-timeout", DefaultShutdownTimeout, "Grace period for in-flight requests on shutdown")
	var configFile string
	fs.StringVarP(&configFile, "config-file", "c", "", "Config file path, "+
		"by default pumpfun-api uses \"pumpfun_api.yml\" in current directory, $HOME or /etc if present")
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "\nUsage: %s [Options]\n", "pumpfun-api")
		fmt.Fprintln(os.Stderr, "\nServe aggregated market data of pump.fun tokens over HTTP")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *showVersion {
		return nil, ErrShowVersion
	}

	v, err := newViper(fs, "pumpfun_api", configFile)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %q", v.ConfigFileUsed())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Port)
	}
	if c.MarketTimeout <= 0 {
		return errors.Errorf("market-timeout must be positive, got %s", c.MarketTimeout)
	}
	if c.HolderTimeout <= 0 {
		return errors.Errorf("holder-timeout must be positive, got %s", c.HolderTimeout)
	}
	if c.DexScreenerURL == "" || c.SolscanURL == "" {
		return errors.New("provider base URLs must not be empty")
	}
	return nil
}

// Addr is the listen address derived from Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseProbe reads settings of the smoke-test client.
func ParseProbe(args []string) (*ProbeConfig, error) {
	fs := pflag.NewFlagSet("pumpfun-probe", pflag.ContinueOnError)
	fs.BoolP("debug", "d", false, "Enable debug mode")
	fs.StringP("api-url", "u", DefaultAPIURL, "Base URL of a running pumpfun-api (env API_URL)")
	fs.IntP("refresh", "r", 0, "Auto refresh on every specified seconds, "+
		"\nnote upstream providers have a rate limit")
	fs.IntP("timeout", "t", 20, "HTTP request timeout in seconds")
	fs.StringSliceP("show", "s", supportedColumns(), "Only show comma-separated columns")
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "\nUsage: %s [Options] [Mint1 Mint2 ...]\n", "pumpfun-probe")
		fmt.Fprintln(os.Stderr, "\nSmoke-test a running pumpfun-api and show token data in the terminal")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v, err := newViper(fs, "", "")
	if err != nil {
		return nil, err
	}
	var cfg ProbeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parse probe config")
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if fs.NArg() != 0 {
		// command-line mints take precedence
		cfg.Mints = fs.Args()
	} else {
		cfg.Mints = append([]string(nil), SampleMints...)
	}
	return &cfg, nil
}

func newViper(fs *pflag.FlagSet, configName, configFile string) (*viper.Viper, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if configName == "" && configFile == "" {
		return v, nil
	}

	v.SetConfigName(configName) // name of config file (without extension)
	v.AddConfigPath(".")        // path to look for the config file in
	v.AddConfigPath("$HOME")    // optionally look for config in the HOME directory
	v.AddConfigPath("/etc")     // and /etc
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, errors.Wrap(err, "read config file")
		}
	}
	return v, nil
}

// SetupLogging configures the standard logrus logger and returns it.
func SetupLogging(debug bool, format string) *logrus.Logger {
	return setupLogger(logrus.StandardLogger(), colorable.NewColorableStderr(), debug, format)
}

func setupLogger(logger *logrus.Logger, out io.Writer, debug bool, format string) *logrus.Logger {
	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}
	logger.SetOutput(out) // For Windows
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
