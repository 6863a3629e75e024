package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/coins/aion"
	"github.com/chinmay1088/walletsdk/config"
	"github.com/chinmay1088/walletsdk/remote"
	"github.com/chinmay1088/walletsdk/rpc"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

const (
	aionAddress  = "0xa0c2d8ec3a1d0e4a1a0b7e3a8f5d2c6b9e1f4a7d3c8b2e5f9a6d1c4b7e0f3a26"
	aionContract = "0xa02e0a5d9c3b7f1e4a8d6c2b5e9f3a7d1c4b8e2f6a0d9c3b7e1f5a4d8c2b6e91"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// node answers JSON-RPC calls with fixed results keyed by method and records every request.
type node struct {
	t        *testing.T
	mu       sync.Mutex
	results  map[string]any
	requests []rpc.Request
	gets     []string
}

func (n *node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if r.Method == http.MethodGet {
		n.gets = append(n.gets, r.URL.String())
		io.WriteString(w, `{"AION":{"USD":0.1}}`)
		return
	}

	var req rpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		n.t.Errorf("failed to decode request: %v", err)
		return
	}
	n.requests = append(n.requests, req)
	json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": n.results[req.Method]})
}

func (n *node) methods() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, r := range n.requests {
		out = append(out, r.Method)
	}
	return out
}

// fakeCoin implements balance, send and same-address only.
type fakeCoin struct {
	network string
	sent    types.Account
}

func (f *fakeCoin) Symbol() string { return "FAKE" }

func (f *fakeCoin) GetBalance(_ context.Context, _ string, network string) (decimal.Decimal, error) {
	f.network = network
	return decimal.NewFromInt(7), nil
}

func (f *fakeCoin) SendTransaction(_ context.Context, account types.Account, _, _ string, _ decimal.Decimal,
	_ types.ExtraParams, _ []byte, network string, broadcast bool) (*types.SendResult, error) {
	f.sent, f.network = account, network
	return &types.SendResult{Hash: "0x01", Broadcasted: broadcast}, nil
}

func (f *fakeCoin) SameAddress(a, b string) bool { return a == b }

func newFakeClient(t *testing.T) (*Client, *fakeCoin) {
	t.Helper()
	fake := &fakeCoin{}
	c, err := NewClient([]string{"fake"}, false,
		WithLogger(quiet),
		WithAdapter("FAKE", func(*coins.Env) Adapter { return fake }, "devnet"),
	)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c, fake
}

func TestAionEndToEnd(t *testing.T) {
	n := &node{t: t, results: map[string]any{
		"eth_call":       "0x00000000000000000de0b6b3a7640000",
		"eth_getBalance": "0x1bc16d674ec80000",
	}}
	srv := httptest.NewServer(n)
	defer srv.Close()

	c, err := NewClient([]string{"AION"}, false,
		WithLogger(quiet),
		WithConfig(config.Set("aion.networks.mainnet.jsonrpc", srv.URL)),
	)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	ctx := context.Background()

	balance, err := c.FetchAccountTokenBalance(ctx, "AION", aionContract, aionAddress, "")
	if err != nil {
		t.Fatalf("FetchAccountTokenBalance() error: %v", err)
	}
	if balance.String() != "1000000000000000000" {
		t.Errorf("token balance = %s", balance)
	}
	if got := n.methods(); len(got) != 1 || got[0] != "eth_call" {
		t.Fatalf("requests = %v, want one eth_call", got)
	}
	msg, _ := n.requests[0].Params[0].(map[string]any)
	data, _ := msg["data"].(string)
	selector := hexutil.Encode(aion.Selector(aion.SigBalanceOf))
	if !strings.HasPrefix(data, selector) || msg["to"] != aionContract {
		t.Errorf("eth_call params = %v, want balanceOf on %s", msg, aionContract)
	}

	native, err := c.GetBalance(ctx, "aion", aionAddress)
	if err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	if !native.Equal(decimal.NewFromInt(2)) {
		t.Errorf("balance = %s, want 2", native)
	}
	if got := n.methods(); len(got) != 2 || got[1] != "eth_getBalance" {
		t.Errorf("requests = %v, want eth_call then eth_getBalance", got)
	}
}

func TestNewClient(t *testing.T) {
	c, err := NewClient([]string{"aion", "ETH", "btc", "ETH"}, true, WithLogger(quiet))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if got := strings.Join(c.Coins(), ","); got != "AION,ETH,BTC" {
		t.Errorf("Coins() = %s", got)
	}
	for coin, want := range map[string]string{"AION": "mastery", "eth": "ropsten", "BTC": "testnet"} {
		if got, _ := c.Network(coin); got != want {
			t.Errorf("Network(%s) = %s, want %s", coin, got, want)
		}
	}

	if _, err := NewClient([]string{"AION", "DOGE"}, false, WithLogger(quiet)); !errors.Is(err, ErrUnsupportedCoin) {
		t.Errorf("NewClient(DOGE) error = %v", err)
	}
}

func TestDispatchErrors(t *testing.T) {
	c, _ := newFakeClient(t)
	ctx := context.Background()

	_, err := c.GetBlockNumber(ctx, "fake")
	if !errors.Is(err, ErrUnimplemented) {
		t.Fatalf("GetBlockNumber() error = %v", err)
	}
	if !strings.Contains(err.Error(), string(CapBlockNumber)) || !strings.Contains(err.Error(), "FAKE") {
		t.Errorf("error %q should name the operation and the coin", err)
	}
	if _, err := c.FetchTokenDetail(ctx, "FAKE", "0x0", ""); !errors.Is(err, ErrUnimplemented) {
		t.Errorf("FetchTokenDetail() error = %v", err)
	}
}

func TestDispatchUnsupportedCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL)
		http.Error(w, "unexpected", http.StatusTeapot)
	}))
	defer srv.Close()

	override := config.Object{}
	for _, key := range []string{
		"aion.networks.mainnet.jsonrpc",
		"aion.networks.mainnet.explorer_api.url",
		"eth.networks.mainnet.jsonrpc",
		"eth.networks.mainnet.explorer_api.url",
		"btc.networks.mainnet.explorer_api.url",
		"remote.prod.api",
		"remote.prod.static",
	} {
		override = config.Merge(override, config.Set(key, srv.URL))
	}
	c, err := NewClient([]string{"AION", "ETH", "BTC"}, false,
		WithLogger(quiet), WithRemote("prod"), WithConfig(override))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	ctx := context.Background()
	const coin = "doge"
	account := types.Account{Symbol: "DOGE", Address: "addr"}
	one := decimal.NewFromInt(1)

	cases := []struct {
		name string
		call func() error
	}{
		{"Network", func() error { _, err := c.Network(coin); return err }},
		{"Capabilities", func() error { _, err := c.Capabilities(coin); return err }},
		{"GetBalance", func() error { _, err := c.GetBalance(ctx, coin, "addr"); return err }},
		{"GetBlockNumber", func() error { _, err := c.GetBlockNumber(ctx, coin); return err }},
		{"GetBlockByNumber", func() error { _, err := c.GetBlockByNumber(ctx, coin, 1); return err }},
		{"GetTransactionStatus", func() error { _, err := c.GetTransactionStatus(ctx, coin, "0x01"); return err }},
		{"GetTransactionsByAddress", func() error { _, err := c.GetTransactionsByAddress(ctx, coin, "addr", 0, 10); return err }},
		{"GetTransactionExplorerURL", func() error { _, err := c.GetTransactionExplorerURL(coin, "0x01"); return err }},
		{"GetTokenIconURL", func() error { _, err := c.GetTokenIconURL(coin, "PLAT", "0x0"); return err }},
		{"SendTransaction", func() error {
			_, err := c.SendTransaction(ctx, account, "DOGE", "to", one, types.ExtraParams{}, nil, true)
			return err
		}},
		{"ValidateBalanceSufficiency", func() error {
			_, err := c.ValidateBalanceSufficiency(ctx, account, "DOGE", one, types.ExtraParams{})
			return err
		}},
		{"SameAddress", func() error { _, err := c.SameAddress(coin, "a", "a"); return err }},
		{"FormatAddress1Line", func() error { _, err := c.FormatAddress1Line(coin, "addr"); return err }},
		{"FetchTokenDetail", func() error { _, err := c.FetchTokenDetail(ctx, coin, "0x0", ""); return err }},
		{"FetchAccountTokens", func() error { _, err := c.FetchAccountTokens(ctx, coin, "addr", ""); return err }},
		{"FetchAccountTokenBalance", func() error { _, err := c.FetchAccountTokenBalance(ctx, coin, "0x0", "addr", ""); return err }},
		{"FetchAccountTokenTransferHistory", func() error {
			_, err := c.FetchAccountTokenTransferHistory(ctx, coin, "addr", "0x0", "", 0, 10)
			return err
		}},
		{"GetTopTokens", func() error { _, err := c.GetTopTokens(ctx, coin, 10); return err }},
		{"SearchTokens", func() error { _, err := c.SearchTokens(ctx, coin, "PL"); return err }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, ErrUnsupportedCoin) {
				t.Errorf("%s(%s) error = %v, want ErrUnsupportedCoin", tc.name, coin, err)
			}
		})
	}

	if err := c.SetCoinNetwork(coin, config.NetworkMainnet); !errors.Is(err, ErrCoinNotInitialized) {
		t.Errorf("SetCoinNetwork(%s) error = %v", coin, err)
	}
}

func TestDispatchForwardsNetwork(t *testing.T) {
	c, fake := newFakeClient(t)
	ctx := context.Background()

	balance, err := c.GetBalance(ctx, "Fake", "addr")
	if err != nil || !balance.Equal(decimal.NewFromInt(7)) || fake.network != "devnet" {
		t.Errorf("GetBalance() = %s, %v on %s", balance, err, fake.network)
	}

	account := types.Account{Symbol: "fake", Address: "addr"}
	res, err := c.SendTransaction(ctx, account, "FAKE", "to", decimal.NewFromInt(1), types.ExtraParams{}, nil, true)
	if err != nil || !res.Broadcasted || fake.sent.Address != "addr" {
		t.Errorf("SendTransaction() = %+v, %v", res, err)
	}

	same, err := c.SameAddress("FAKE", "a", "a")
	if err != nil || !same {
		t.Errorf("SameAddress() = %v, %v", same, err)
	}
}

func TestDefaults(t *testing.T) {
	c, _ := newFakeClient(t)
	ctx := context.Background()

	res, err := c.ValidateBalanceSufficiency(ctx, types.Account{Symbol: "FAKE"}, "FAKE", decimal.NewFromInt(1000), types.ExtraParams{})
	if err != nil || !res.Result {
		t.Errorf("ValidateBalanceSufficiency() = %+v, %v", res, err)
	}

	formatted, err := c.FormatAddress1Line("FAKE", "some-long-address")
	if err != nil || formatted != "some-long-address" {
		t.Errorf("FormatAddress1Line() = %q, %v", formatted, err)
	}
}

func TestCapabilities(t *testing.T) {
	c, _ := newFakeClient(t)
	caps, err := c.Capabilities("FAKE")
	if err != nil {
		t.Fatalf("Capabilities() error: %v", err)
	}
	want := []Capability{CapBalance, CapSendTransaction, CapSameAddress}
	if !slices.Equal(caps, want) {
		t.Errorf("Capabilities() = %v, want %v", caps, want)
	}

	full, _ := NewClient([]string{"ETH", "BTC"}, false, WithLogger(quiet))
	ethCaps, _ := full.Capabilities("ETH")
	if len(ethCaps) != 17 {
		t.Errorf("ETH capabilities = %v", ethCaps)
	}
	btcCaps, _ := full.Capabilities("BTC")
	if slices.Contains(btcCaps, CapBalanceSufficiency) || !slices.Contains(btcCaps, CapSendTransaction) {
		t.Errorf("BTC capabilities = %v", btcCaps)
	}
}

func TestSetCoinNetwork(t *testing.T) {
	c, err := NewClient([]string{"ETH"}, false, WithLogger(quiet))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	if err := c.SetCoinNetwork("eth", config.NetworkPokket); err != nil {
		t.Fatalf("SetCoinNetwork() error: %v", err)
	}
	if got, _ := c.Network("ETH"); got != config.NetworkPokket {
		t.Errorf("Network() = %s", got)
	}
	if err := c.SetCoinNetwork("BTC", config.NetworkTestnet); !errors.Is(err, ErrCoinNotInitialized) {
		t.Errorf("SetCoinNetwork(BTC) error = %v", err)
	}
	if err := c.SetCoinNetwork("ETH", "kovan"); !errors.Is(err, config.ErrUnknownNetwork) {
		t.Errorf("SetCoinNetwork(kovan) error = %v", err)
	}
}

func TestRemoteAPI(t *testing.T) {
	n := &node{t: t}
	srv := httptest.NewServer(n)
	defer srv.Close()

	c, err := NewClient([]string{"AION", "ETH"}, false, WithLogger(quiet))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	if env := c.SetRemoteAPI("prod"); env != remote.Prod {
		t.Errorf("SetRemoteAPI(prod) = %s", env)
	}
	if env := c.SetRemoteAPI("nowhere"); env != remote.Staging {
		t.Errorf("SetRemoteAPI(nowhere) = %s, want staging", env)
	}

	c.CoverRemoteAPI(config.Set("remote.staging.api", srv.URL+"/"))
	prices, err := c.GetCoinPrices(context.Background(), "USD")
	if err != nil {
		t.Fatalf("GetCoinPrices() error: %v", err)
	}
	if !strings.Contains(string(prices), "AION") {
		t.Errorf("prices = %s", prices)
	}
	if len(n.gets) != 1 || n.gets[0] != "/market/prices?cryptos=AION,ETH&fiat=USD" {
		t.Errorf("GET = %v", n.gets)
	}
}

func TestWithSettingsShared(t *testing.T) {
	settings := config.NewSettings(nil)
	c, err := NewClient([]string{"BTC"}, false, WithLogger(quiet), WithSettings(settings),
		WithConfig(config.Set("btc.networks.mainnet.explorer.url", "https://explorer.test/tx/")))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.Settings() != settings {
		t.Fatalf("client should share the given settings")
	}

	url, err := c.GetTransactionExplorerURL("BTC", "abcd")
	if err != nil || url != "https://explorer.test/tx/abcd" {
		t.Errorf("GetTransactionExplorerURL() = %s, %v", url, err)
	}
}
