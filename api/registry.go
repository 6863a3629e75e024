package api

import (
	"sort"

	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/coins/aion"
	"github.com/chinmay1088/walletsdk/coins/btc"
	"github.com/chinmay1088/walletsdk/coins/eth"
	"github.com/chinmay1088/walletsdk/config"
)

// Factory builds the adapter of one coin.
type Factory func(env *coins.Env) Adapter

type registration struct {
	factory Factory
	mainnet string
	testnet string
}

// built in coins and their default networks
var registry = map[string]registration{
	aion.Symbol: {
		factory: func(env *coins.Env) Adapter { return aion.New(env) },
		mainnet: config.NetworkMainnet,
		testnet: config.NetworkMastery,
	},
	eth.Symbol: {
		factory: func(env *coins.Env) Adapter { return eth.New(env) },
		mainnet: config.NetworkMainnet,
		testnet: config.NetworkRopsten,
	},
	btc.Symbol: {
		factory: func(env *coins.Env) Adapter { return btc.New(env) },
		mainnet: config.NetworkMainnet,
		testnet: config.NetworkTestnet,
	},
}

// Supported returns the symbols of the built in coins.
func Supported() []string {
	symbols := make([]string, 0, len(registry))
	for symbol := range registry {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
