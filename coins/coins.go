// Package coins holds what every coin adapter shares: the live configuration, the remote
// backend selector, the HTTP transport and the logger.
package coins

import (
	"fmt"
	"log/slog"
	"math/big"
	"net/url"
	"strings"

	"github.com/chinmay1088/walletsdk/config"
	"github.com/chinmay1088/walletsdk/remote"
	"github.com/chinmay1088/walletsdk/rpc"
	"github.com/shopspring/decimal"
)

// Env is handed to every adapter by the facade. Adapters resolve endpoints through it on each
// call so configuration changes take effect for the next request.
type Env struct {
	Settings *config.Settings
	Remote   *remote.Selector
	RPC      *rpc.Client
	Log      *slog.Logger
}

// NewEnv fills the missing parts of an environment with defaults.
func NewEnv(settings *config.Settings, sel *remote.Selector, client *rpc.Client, log *slog.Logger) *Env {
	if log == nil {
		log = slog.Default()
	}
	if settings == nil {
		settings = config.NewSettings(nil)
	}
	if sel == nil {
		sel = remote.NewSelector(settings, remote.Prod, log)
	}
	if client == nil {
		client = rpc.NewClient(nil, log)
	}
	return &Env{Settings: settings, Remote: sel, RPC: client, Log: log}
}

// Network returns the configuration of one network of coin.
func (e *Env) Network(coin, network string) (config.Network, error) {
	return e.Settings.Network(coin, network)
}

// Endpoint returns the JSON-RPC endpoint of one network of coin.
func (e *Env) Endpoint(coin, network string) (string, error) {
	n, err := e.Settings.Network(coin, network)
	if err != nil {
		return "", err
	}
	if n.JSONRPC == "" {
		return "", fmt.Errorf("no jsonrpc endpoint configured for %s %s", coin, network)
	}
	return n.JSONRPC, nil
}

// ExplorerAPI returns the explorer API of one network of coin with any trailing slash removed.
func (e *Env) ExplorerAPI(coin, network string) (config.Explorer, error) {
	n, err := e.Settings.Network(coin, network)
	if err != nil {
		return config.Explorer{}, err
	}
	if n.ExplorerAPI.URL == "" {
		return config.Explorer{}, fmt.Errorf("no explorer api configured for %s %s", coin, network)
	}
	n.ExplorerAPI.URL = strings.TrimRight(n.ExplorerAPI.URL, "/")
	return n.ExplorerAPI, nil
}

// ExplorerTxURL returns the explorer page of a transaction.
func (e *Env) ExplorerTxURL(coin, network, hash string) (string, error) {
	n, err := e.Settings.Network(coin, network)
	if err != nil {
		return "", err
	}
	if n.Explorer.URL == "" {
		return "", fmt.Errorf("no explorer configured for %s %s", coin, network)
	}
	return strings.TrimRight(n.Explorer.URL, "/") + "/" + hash, nil
}

// TokenIconURL returns the icon of a token served by the selected backend.
func (e *Env) TokenIconURL(chain, symbol string) string {
	return fmt.Sprintf("%s/token/%s/%s.png", e.Remote.Static(), chain, url.PathEscape(symbol))
}

// TopTokensURL returns the backend listing of the most popular tokens of chain.
func (e *Env) TopTokensURL(chain string, topN int) string {
	return fmt.Sprintf("%s/token/%s?offset=0&limit=%d", e.Remote.API(), chain, topN)
}

// SearchTokensURL returns the backend token search of chain.
func (e *Env) SearchTokensURL(chain, keyword string) string {
	return fmt.Sprintf("%s/token/%s/search?keyword=%s", e.Remote.API(), chain, url.QueryEscape(keyword))
}

// FromUnits converts an integer amount in the smallest unit to a decimal amount.
func FromUnits(value *big.Int, decimals int) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, int32(-decimals))
}

// ToUnits converts a decimal amount to the smallest unit, truncating below one unit.
func ToUnits(value decimal.Decimal, decimals int) *big.Int {
	return value.Shift(int32(decimals)).Truncate(0).BigInt()
}
