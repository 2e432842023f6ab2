package wallet

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the tool's configuration.
type Config struct {
	// Account is the wallet's Stellar account id ("G...").
	Account      string `toml:"account"`
	HorizonURL   string `toml:"horizon_url"`
	CoinGeckoURL string `toml:"coingecko_url"`
	// DataDir holds the fetch cache, the price book and the HTTP cache.
	DataDir string `toml:"data_dir"`
	// Dust is the inbound-payment spam threshold in nominal units,
	// e.g. "0.01". Empty disables the filter.
	Dust string `toml:"dust"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		HorizonURL:   DefaultHorizonURL,
		CoinGeckoURL: DefaultCoinGeckoURL,
		DataDir:      "data",
		Dust:         "0.01",
	}
}

// LoadConfig loads configuration files over the defaults, later files
// overriding earlier ones, then applies environment overrides. Missing files
// are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SWE_ACCOUNT"); v != "" {
		config.Account = v
	}
	if v := os.Getenv("SWE_HORIZON_URL"); v != "" {
		config.HorizonURL = v
	}
	if v := os.Getenv("SWE_DATA_DIR"); v != "" {
		config.DataDir = v
	}
}

// DustAtomic parses the dust threshold into atomic units. Empty means no
// filtering.
func (c *Config) DustAtomic() (int64, error) {
	if c.Dust == "" {
		return 0, nil
	}
	v, err := ParseAtomic(c.Dust)
	if err != nil {
		return 0, fmt.Errorf("invalid dust threshold %q: %w", c.Dust, err)
	}
	return v, nil
}

// TransactionsFile is the path of the JSONL fetch cache.
func (c *Config) TransactionsFile() string {
	return filepath.Join(c.DataDir, "transactions.jsonl")
}

// PriceBookFile is the path of the JSONL price book.
func (c *Config) PriceBookFile() string {
	return filepath.Join(c.DataDir, "prices.jsonl")
}

// HTTPCacheDir is the directory of the daily HTTP response cache.
func (c *Config) HTTPCacheDir() string {
	return filepath.Join(c.DataDir, "httpcache")
}
