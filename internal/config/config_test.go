package config_test

import (
	"testing"

	"fenrir/internal/config"
	"fenrir/internal/matcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.ListenAddress)
	assert.Equal(t, 9001, cfg.ListenPort)
	assert.Equal(t, 9002, cfg.FeedPort)
	require.Len(t, cfg.Symbols, 1)
	assert.Equal(t, "BTC-USD", cfg.Symbols[0].Symbol)
}

func TestRegisterSymbols(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	m := matcher.New(nil)
	require.NoError(t, config.RegisterSymbols(m, cfg))

	_, ok := m.Book("BTC-USD")
	assert.True(t, ok)
}

func TestRegisterSymbols_DuplicateFails(t *testing.T) {
	cfg := &config.Config{
		Symbols: []config.SymbolConfig{
			{Symbol: "BTC-USD"},
			{Symbol: "BTC-USD"},
		},
	}
	m := matcher.New(nil)
	assert.Error(t, config.RegisterSymbols(m, cfg))
}
