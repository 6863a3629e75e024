package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/config"
	"github.com/chinmay1088/walletsdk/remote"
	"github.com/chinmay1088/walletsdk/rpc"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/shopspring/decimal"
)

type options struct {
	override   config.Object
	settings   *config.Settings
	httpClient *http.Client
	log        *slog.Logger
	remote     string
	adapters   map[string]custom
}

type custom struct {
	factory Factory
	network string
}

// Option configures a Client.
type Option func(*options)

// WithConfig merges override onto the default configuration.
func WithConfig(override config.Object) Option {
	return func(o *options) { o.override = config.Merge(o.override, override) }
}

// WithSettings makes the client share existing settings instead of building its own.
func WithSettings(settings *config.Settings) Option {
	return func(o *options) { o.settings = settings }
}

// WithHTTPClient sets the HTTP client used for every outgoing request.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRemote selects the initial remote backend environment (qa, staging or prod).
func WithRemote(name string) Option {
	return func(o *options) { o.remote = name }
}

// WithAdapter registers an adapter outside the built in set, or replaces a built in one.
// The coin is enabled on network regardless of the testnet flag.
func WithAdapter(symbol string, factory Factory, network string) Option {
	return func(o *options) {
		if o.adapters == nil {
			o.adapters = make(map[string]custom)
		}
		o.adapters[strings.ToUpper(symbol)] = custom{factory: factory, network: network}
	}
}

type entry struct {
	adapter Adapter
	network string
}

// Client dispatches wallet operations to the adapter of each enabled coin.
type Client struct {
	env      *coins.Env
	settings *config.Settings
	remote   *remote.Selector
	log      *slog.Logger

	mu    sync.RWMutex
	coins map[string]*entry
	order []string
}

// NewClient enables the given coins on mainnet, or on each coin's test network when testnet
// is set. An unknown symbol fails the whole construction.
func NewClient(symbols []string, testnet bool, opts ...Option) (*Client, error) {
	o := &options{remote: string(remote.Prod)}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}

	settings := o.settings
	if settings == nil {
		settings = config.NewSettings(o.override)
	} else if o.override != nil {
		settings.Cover(o.override)
	}

	sel := remote.NewSelector(settings, remote.Prod, o.log)
	sel.Set(o.remote)

	env := coins.NewEnv(settings, sel, rpc.NewClient(o.httpClient, o.log), o.log)
	c := &Client{
		env:      env,
		settings: settings,
		remote:   sel,
		log:      o.log,
		coins:    make(map[string]*entry, len(symbols)),
	}

	for _, s := range symbols {
		symbol := strings.ToUpper(strings.TrimSpace(s))
		if _, dup := c.coins[symbol]; dup {
			continue
		}

		var (
			factory Factory
			network string
		)
		if ca, ok := o.adapters[symbol]; ok {
			factory, network = ca.factory, ca.network
		} else if reg, ok := registry[symbol]; ok {
			factory, network = reg.factory, reg.mainnet
			if testnet {
				network = reg.testnet
			}
		} else {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedCoin, s)
		}

		c.coins[symbol] = &entry{adapter: factory(env), network: network}
		c.order = append(c.order, symbol)
		c.log.Debug("coin enabled", "coin", symbol, "network", network)
	}

	return c, nil
}

// Coins returns the enabled coin symbols in the order they were given.
func (c *Client) Coins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Network returns the current network of coin.
func (c *Client) Network(coin string) (string, error) {
	_, network, err := c.lookup(coin)
	return network, err
}

// Settings returns the live configuration of the client.
func (c *Client) Settings() *config.Settings {
	return c.settings
}

// Capabilities lists the operations the adapter of coin implements.
func (c *Client) Capabilities(coin string) ([]Capability, error) {
	adapter, _, err := c.lookup(coin)
	if err != nil {
		return nil, err
	}
	return CapabilitiesOf(adapter), nil
}

// SetCoinNetwork switches coin to another configured network. Requests already in flight keep
// the network they started with.
func (c *Client) SetCoinNetwork(coin, network string) error {
	symbol := strings.ToUpper(coin)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.coins[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", ErrCoinNotInitialized, coin)
	}
	if known := c.settings.Networks(symbol); len(known) > 0 && !slices.Contains(known, network) {
		return fmt.Errorf("%w: %s for coin %s", config.ErrUnknownNetwork, network, symbol)
	}

	c.log.Warn("changing coin network at runtime is dangerous", "coin", symbol, "from", e.network, "to", network)
	e.network = network
	return nil
}

// SetRemoteAPI selects the remote backend environment. Unknown names select staging.
func (c *Client) SetRemoteAPI(name string) remote.Environment {
	env := c.remote.Set(name)
	c.log.Warn("remote api changed", "env", env)
	return env
}

// CoverRemoteAPI merges override onto the live configuration.
func (c *Client) CoverRemoteAPI(override config.Object) {
	c.settings.Cover(override)
}

// GetBalance returns the native balance of address in whole coins.
func (c *Client) GetBalance(ctx context.Context, coin, address string) (decimal.Decimal, error) {
	a, network, err := capability[BalanceGetter](c, coin, CapBalance)
	if err != nil {
		return decimal.Zero, err
	}
	return a.GetBalance(ctx, address, network)
}

// GetBlockNumber returns the latest block number.
func (c *Client) GetBlockNumber(ctx context.Context, coin string) (uint64, error) {
	a, network, err := capability[BlockNumberGetter](c, coin, CapBlockNumber)
	if err != nil {
		return 0, err
	}
	return a.GetBlockNumber(ctx, network)
}

// GetBlockByNumber returns a block header and its transaction hashes.
func (c *Client) GetBlockByNumber(ctx context.Context, coin string, number uint64) (*types.Block, error) {
	a, network, err := capability[BlockGetter](c, coin, CapBlockByNumber)
	if err != nil {
		return nil, err
	}
	return a.GetBlockByNumber(ctx, number, network)
}

// GetTransactionStatus reports whether a transaction is pending, confirmed or failed.
func (c *Client) GetTransactionStatus(ctx context.Context, coin, hash string) (*types.TxStatus, error) {
	a, network, err := capability[TransactionStatusGetter](c, coin, CapTransactionStatus)
	if err != nil {
		return nil, err
	}
	return a.GetTransactionStatus(ctx, hash, network)
}

// GetTransactionsByAddress returns one page of the history of address.
func (c *Client) GetTransactionsByAddress(ctx context.Context, coin, address string, page, size int) (types.Transactions, error) {
	a, network, err := capability[TransactionLister](c, coin, CapTransactions)
	if err != nil {
		return nil, err
	}
	return a.GetTransactionsByAddress(ctx, address, page, size, network)
}

// GetTransactionExplorerURL returns the explorer page of a transaction.
func (c *Client) GetTransactionExplorerURL(coin, hash string) (string, error) {
	a, network, err := capability[ExplorerLinker](c, coin, CapExplorerURL)
	if err != nil {
		return "", err
	}
	return a.GetTransactionExplorerURL(hash, network)
}

// GetTokenIconURL returns the icon URL of a token.
func (c *Client) GetTokenIconURL(coin, symbol, contractAddress string) (string, error) {
	a, _, err := capability[TokenIconLinker](c, coin, CapTokenIconURL)
	if err != nil {
		return "", err
	}
	return a.GetTokenIconURL(symbol, contractAddress)
}

// SendTransaction signs a transfer of value (in whole units of symbol) from account to to,
// and broadcasts it when broadcast is set. The coin is taken from account.Symbol.
func (c *Client) SendTransaction(ctx context.Context, account types.Account, symbol, to string, value decimal.Decimal,
	extra types.ExtraParams, data []byte, broadcast bool) (*types.SendResult, error) {
	a, network, err := capability[TransactionSender](c, account.Symbol, CapSendTransaction)
	if err != nil {
		return nil, err
	}
	return a.SendTransaction(ctx, account, symbol, to, value, extra, data, network, broadcast)
}

// ValidateBalanceSufficiency checks that account can pay amount of symbol plus fees. Coins
// without the check always pass.
func (c *Client) ValidateBalanceSufficiency(ctx context.Context, account types.Account, symbol string,
	amount decimal.Decimal, extra types.ExtraParams) (types.Sufficiency, error) {
	adapter, network, err := c.lookup(account.Symbol)
	if err != nil {
		return types.Sufficiency{}, err
	}
	v, ok := adapter.(SufficiencyValidator)
	if !ok {
		return types.Sufficiency{Result: true}, nil
	}
	return v.ValidateBalanceSufficiency(ctx, account, symbol, amount, extra, network)
}

// SameAddress reports whether two strings denote the same address of coin.
func (c *Client) SameAddress(coin, address1, address2 string) (bool, error) {
	a, _, err := capability[AddressComparer](c, coin, CapSameAddress)
	if err != nil {
		return false, err
	}
	return a.SameAddress(address1, address2), nil
}

// FormatAddress1Line shortens address for single line display. Coins without a formatter
// return the address unchanged.
func (c *Client) FormatAddress1Line(coin, address string) (string, error) {
	adapter, _, err := c.lookup(coin)
	if err != nil {
		return "", err
	}
	f, ok := adapter.(AddressFormatter)
	if !ok {
		return address, nil
	}
	return f.FormatAddress1Line(address), nil
}

// GetCoinPrices returns the market prices of every enabled coin in fiat, as served by the
// remote backend.
func (c *Client) GetCoinPrices(ctx context.Context, fiat string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/market/prices?cryptos=%s&fiat=%s",
		c.remote.API(), strings.Join(c.Coins(), ","), url.QueryEscape(fiat))

	var out json.RawMessage
	if err := c.env.RPC.GetJSON(ctx, u, &out); err != nil {
		return nil, fmt.Errorf("failed to get coin prices: %w", err)
	}
	return out, nil
}

// FetchTokenDetail reads symbol, name and decimals from a token contract. An empty network
// means the coin's current network.
func (c *Client) FetchTokenDetail(ctx context.Context, coin, contractAddress, network string) (*types.TokenDetail, error) {
	a, current, err := capability[TokenDetailFetcher](c, coin, CapTokenDetail)
	if err != nil {
		return nil, err
	}
	return a.FetchTokenDetail(ctx, contractAddress, or(network, current))
}

// FetchAccountTokens lists the tokens held by address.
func (c *Client) FetchAccountTokens(ctx context.Context, coin, address, network string) (types.Tokens, error) {
	a, current, err := capability[AccountTokensFetcher](c, coin, CapAccountTokens)
	if err != nil {
		return nil, err
	}
	return a.FetchAccountTokens(ctx, address, or(network, current))
}

// FetchAccountTokenBalance returns the raw token balance of address.
func (c *Client) FetchAccountTokenBalance(ctx context.Context, coin, contractAddress, address, network string) (*big.Int, error) {
	a, current, err := capability[TokenBalanceFetcher](c, coin, CapAccountTokenBalance)
	if err != nil {
		return nil, err
	}
	return a.FetchAccountTokenBalance(ctx, contractAddress, address, or(network, current))
}

// FetchAccountTokenTransferHistory returns one page of token transfers of address.
func (c *Client) FetchAccountTokenTransferHistory(ctx context.Context, coin, address, contractAddress, network string,
	page, size int) (types.Transactions, error) {
	a, current, err := capability[TokenHistoryFetcher](c, coin, CapTokenHistory)
	if err != nil {
		return nil, err
	}
	return a.FetchAccountTokenTransferHistory(ctx, address, contractAddress, page, size, or(network, current))
}

// GetTopTokens returns the remote backend's top topN tokens of coin.
func (c *Client) GetTopTokens(ctx context.Context, coin string, topN int) (json.RawMessage, error) {
	a, _, err := capability[TopTokensFetcher](c, coin, CapTopTokens)
	if err != nil {
		return nil, err
	}
	return a.GetTopTokens(ctx, topN)
}

// SearchTokens searches the remote backend's token list of coin.
func (c *Client) SearchTokens(ctx context.Context, coin, keyword string) (json.RawMessage, error) {
	a, _, err := capability[TokenSearcher](c, coin, CapSearchTokens)
	if err != nil {
		return nil, err
	}
	return a.SearchTokens(ctx, keyword)
}

func (c *Client) lookup(coin string) (Adapter, string, error) {
	symbol := strings.ToUpper(coin)

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.coins[symbol]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedCoin, coin)
	}
	return e.adapter, e.network, nil
}

func capability[T any](c *Client, coin string, name Capability) (T, string, error) {
	var zero T
	adapter, network, err := c.lookup(coin)
	if err != nil {
		return zero, "", err
	}
	impl, ok := adapter.(T)
	if !ok {
		return zero, "", fmt.Errorf("%w: %s for coin %s", ErrUnimplemented, name, strings.ToUpper(coin))
	}
	return impl, network, nil
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
