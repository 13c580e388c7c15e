// Package config loads the exchange's runtime configuration (listen
// address, registered symbols and their tick/lot precisions) via
// spf13/viper, following the YAML-or-env layering that exchange-style
// engines in this codebase's ecosystem standardize on (the dependency
// appears, alongside an equivalent config.yaml/env pattern, across the
// market-making manifests retrieved alongside this repository). The
// teacher repo hardcodes its one symbol (common.Equities) directly in
// cmd/main.go; this replaces that hardcoding with a loadable list
// since SPEC_FULL.md's SymbolRegistry is dynamic.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"fenrir/internal/matcher"
)

// SymbolConfig is the on-disk/env representation of one registered
// symbol.
type SymbolConfig struct {
	Symbol         string `mapstructure:"symbol"`
	DisplayName    string `mapstructure:"display_name"`
	PricePrecision uint8  `mapstructure:"price_precision"`
	SizePrecision  uint8  `mapstructure:"size_precision"`
}

// Config is the exchange's full runtime configuration.
type Config struct {
	ListenAddress string         `mapstructure:"listen_address"`
	ListenPort    int            `mapstructure:"listen_port"`
	FeedPort      int            `mapstructure:"feed_port"`
	Symbols       []SymbolConfig `mapstructure:"symbols"`
}

func defaults() *viper.Viper {
	v := viper.New()
	v.SetDefault("listen_address", "0.0.0.0")
	v.SetDefault("listen_port", 9001)
	v.SetDefault("feed_port", 9002)
	v.SetDefault("symbols", []map[string]any{
		{"symbol": "BTC-USD", "display_name": "Bitcoin / US Dollar", "price_precision": 2, "size_precision": 8},
	})
	v.SetEnvPrefix("FENRIR")
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path (if non-empty) layered over
// built-in defaults and FENRIR_-prefixed environment variables.
func Load(path string) (*Config, error) {
	v := defaults()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

// RegisterSymbols adds every symbol in cfg to m, stopping at the first
// error (e.g. a duplicate symbol name).
func RegisterSymbols(m *matcher.Matcher, cfg *Config) error {
	for _, s := range cfg.Symbols {
		err := m.AddSymbol(s.Symbol, matcher.SymbolMetadata{
			DisplayName:    s.DisplayName,
			PricePrecision: s.PricePrecision,
			SizePrecision:  s.SizePrecision,
		})
		if err != nil {
			return fmt.Errorf("registering symbol %s: %w", s.Symbol, err)
		}
	}
	return nil
}
