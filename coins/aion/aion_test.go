package aion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/config"
	"github.com/chinmay1088/walletsdk/remote"
	"github.com/chinmay1088/walletsdk/rpc"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

const (
	testAddress  = "0xa0c2d8ec3a1d0e4a1a0b7e3a8f5d2c6b9e1f4a7d3c8b2e5f9a6d1c4b7e0f3a26"
	testContract = "0xa02e0a5d9c3b7f1e4a8d6c2b5e9f3a7d1c4b8e2f6a0d9c3b7e1f5a4d8c2b6e91"
)

// backend is a fake AION node plus dashboard. JSON-RPC calls are answered from rpcResults,
// GET requests from getBodies keyed by path.
type backend struct {
	t          *testing.T
	mu         sync.Mutex
	rpcResults map[string]any
	getBodies  map[string]string
	requests   []rpc.Request
	urls       []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.Method == http.MethodGet {
		b.urls = append(b.urls, r.URL.String())
		body, ok := b.getBodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
		return
	}

	var req rpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		b.t.Errorf("failed to decode body: %v", err)
		return
	}
	b.requests = append(b.requests, req)

	key := req.Method
	if req.Method == "eth_call" {
		key = callKey(req)
	}
	result, ok := b.rpcResults[key]
	if !ok {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID,
			"error": map[string]any{"code": -32000, "message": "execution reverted"},
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
}

// callKey names an eth_call by the selector of its data.
func callKey(req rpc.Request) string {
	msg, _ := req.Params[0].(map[string]any)
	data, _ := msg["data"].(string)
	if len(data) < 10 {
		return "eth_call"
	}
	return "eth_call:" + data[:10]
}

func selectorKey(signature string) string {
	return "eth_call:" + hexutil.Encode(Selector(signature))
}

func newTestAdapter(t *testing.T, b *backend) *Adapter {
	t.Helper()
	b.t = t
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)

	override := config.Merge(
		config.Set("aion.networks.mainnet.jsonrpc", server.URL),
		config.Set("aion.networks.mainnet.explorer_api.url", server.URL+"/"),
	)
	override = config.Merge(override, config.Set("remote.prod.api", server.URL+"/api"))
	override = config.Merge(override, config.Set("remote.prod.static", server.URL+"/static"))

	settings := config.NewSettings(override)
	env := coins.NewEnv(settings, remote.NewSelector(settings, remote.Prod, nil), nil, nil)
	return New(env)
}

// word packs v in one 16 byte word.
func word(v *big.Int) string {
	return hexutil.Encode(common.LeftPadBytes(v.Bytes(), 16))
}

// fvmString packs s as an offset word, a length word and the padded bytes.
func fvmString(s string) string {
	padded := (len(s) + 15) / 16 * 16
	data := make([]byte, 0, 32+padded)
	data = append(data, common.LeftPadBytes([]byte{16}, 16)...)
	data = append(data, common.LeftPadBytes(big.NewInt(int64(len(s))).Bytes(), 16)...)
	data = append(data, common.RightPadBytes([]byte(s), padded)...)
	return hexutil.Encode(data)
}

func TestGetBalance(t *testing.T) {
	b := &backend{rpcResults: map[string]any{"eth_getBalance": "0x14d1120d7b160000"}}
	adapter := newTestAdapter(t, b)

	balance, err := adapter.GetBalance(context.Background(), testAddress, config.NetworkMainnet)
	if err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("balance = %s, want 1.5", balance)
	}
	if len(b.requests) != 1 || b.requests[0].Method != "eth_getBalance" {
		t.Fatalf("requests = %+v", b.requests)
	}
	if b.requests[0].Params[0] != testAddress || b.requests[0].Params[1] != "latest" {
		t.Errorf("params = %v", b.requests[0].Params)
	}
}

func TestFetchAccountTokenBalance(t *testing.T) {
	// AION nodes answer uint128 as a 16 byte word
	b := &backend{rpcResults: map[string]any{
		selectorKey(SigBalanceOf): "0x00000000000000000de0b6b3a7640000",
	}}
	adapter := newTestAdapter(t, b)

	balance, err := adapter.FetchAccountTokenBalance(context.Background(), testContract, testAddress, config.NetworkMainnet)
	if err != nil {
		t.Fatalf("FetchAccountTokenBalance() error: %v", err)
	}
	if balance.String() != "1000000000000000000" {
		t.Errorf("balance = %s", balance)
	}

	if len(b.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(b.requests))
	}
	req := b.requests[0]
	msg := req.Params[0].(map[string]any)
	if req.Method != "eth_call" || req.Params[1] != "latest" || msg["to"] != testContract {
		t.Errorf("unexpected request %+v", req)
	}
	want := "0x4a3a0f33" + strings.TrimPrefix(testAddress, "0x")
	if msg["data"] != want {
		t.Errorf("data = %v, want %s", msg["data"], want)
	}
}

func TestFetchAccountTokenBalanceInvalidAddress(t *testing.T) {
	b := &backend{}
	adapter := newTestAdapter(t, b)

	if _, err := adapter.FetchAccountTokenBalance(context.Background(), testContract, "0x1234", config.NetworkMainnet); err == nil {
		t.Errorf("expected error for short address")
	}
	if len(b.requests) != 0 {
		t.Errorf("no request expected, got %d", len(b.requests))
	}
}

func TestFetchTokenDetail(t *testing.T) {
	b := &backend{rpcResults: map[string]any{
		selectorKey(SigSymbol):   fvmString("PLAT"),
		selectorKey(SigName):     "0x506c6174696e756d000000000000000000000000000000000000000000000000", // bytes32 "Platinum"
		selectorKey(SigDecimals): word(big.NewInt(18)),
	}}
	adapter := newTestAdapter(t, b)

	detail, err := adapter.FetchTokenDetail(context.Background(), testContract, config.NetworkMainnet)
	if err != nil {
		t.Fatalf("FetchTokenDetail() error: %v", err)
	}
	want := types.TokenDetail{ContractAddr: testContract, Symbol: "PLAT", Name: "Platinum", Decimals: 18}
	if *detail != want {
		t.Errorf("detail = %+v, want %+v", *detail, want)
	}
	if len(b.requests) != 3 {
		t.Errorf("requests = %d, want 3", len(b.requests))
	}
}

func TestFetchTokenDetailMissingResult(t *testing.T) {
	b := &backend{rpcResults: map[string]any{
		selectorKey(SigSymbol): fvmString("PLAT"),
		selectorKey(SigName):   fvmString("Platinum"),
	}}
	adapter := newTestAdapter(t, b)

	_, err := adapter.FetchTokenDetail(context.Background(), testContract, config.NetworkMainnet)
	if !errors.Is(err, ErrTokenDetail) {
		t.Errorf("FetchTokenDetail() error = %v, want ErrTokenDetail", err)
	}
}

func TestFetchAccountTokens(t *testing.T) {
	b := &backend{getBodies: map[string]string{
		"/aion/dashboard/getAccountDetails": `{"content":[{"tokens":[
			{"symbol":"PLAT","contractAddr":"a02e","name":"Platinum","tokenDecimal":18},
			{"symbol":"GOLD","contractAddr":"a03f","name":"Gold","tokenDecimal":8}
		]}]}`,
	}}
	adapter := newTestAdapter(t, b)

	tokens, err := adapter.FetchAccountTokens(context.Background(), "0xA0C2", config.NetworkMainnet)
	if err != nil {
		t.Fatalf("FetchAccountTokens() error: %v", err)
	}
	if len(tokens) != 2 || tokens["GOLD"].TokenDecimal != 8 || tokens["PLAT"].Name != "Platinum" {
		t.Errorf("tokens = %+v", tokens)
	}
	if tokens["PLAT"].Balance.Sign() != 0 || tokens["PLAT"].TokenTxs == nil {
		t.Errorf("token should start with zero balance and empty history")
	}
	if !strings.Contains(b.urls[0], "accountAddress=0xa0c2") {
		t.Errorf("address should be lower cased: %s", b.urls[0])
	}
}

func TestFetchAccountTokensEmpty(t *testing.T) {
	b := &backend{getBodies: map[string]string{"/aion/dashboard/getAccountDetails": `{"content":[]}`}}
	tokens, err := newTestAdapter(t, b).FetchAccountTokens(context.Background(), testAddress, config.NetworkMainnet)
	if err != nil || len(tokens) != 0 {
		t.Errorf("FetchAccountTokens() = %v, %v", tokens, err)
	}
}

func TestFetchAccountTokenTransferHistory(t *testing.T) {
	b := &backend{getBodies: map[string]string{
		"/aion/dashboard/getTransactionsByAddress": `{"content":[
			{"transactionHash":"abc","transferTimestamp":1550000000,"fromAddr":"a01","toAddr":"a02","tknValue":"2.5","blockNumber":100}
		]}`,
	}}
	adapter := newTestAdapter(t, b)

	txs, err := adapter.FetchAccountTokenTransferHistory(context.Background(), testAddress, "0xA02E", 1, 25, config.NetworkMainnet)
	if err != nil {
		t.Fatalf("FetchAccountTokenTransferHistory() error: %v", err)
	}
	tx, ok := txs["0xabc"]
	if !ok {
		t.Fatalf("transactions should be keyed by 0x prefixed hash: %+v", txs)
	}
	if tx.Timestamp != 1550000000000 || tx.From != "0xa01" || tx.To != "0xa02" ||
		tx.Status != types.StatusConfirmed || tx.BlockNumber != 100 || !tx.Value.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("unexpected transaction %+v", tx)
	}
	for _, want := range []string{"tokenAddress=0xa02e", "page=1", "size=25"} {
		if !strings.Contains(b.urls[0], want) {
			t.Errorf("url %s should contain %s", b.urls[0], want)
		}
	}
}

func TestGetTransactionsByAddress(t *testing.T) {
	b := &backend{getBodies: map[string]string{
		"/aion/dashboard/getTransactionsByAddress": `{"content":[
			{"transactionHash":"ok","transactionTimestamp":1550000000000000,"fromAddr":"a01","toAddr":"a02","value":1.5,"blockNumber":7,"txError":"","nrgConsumed":21000,"nrgPrice":10000000000},
			{"transactionHash":"bad","transactionTimestamp":1550000000000000,"fromAddr":"a01","toAddr":"a02","value":0,"blockNumber":8,"txError":"REVERT"}
		]}`,
	}}
	adapter := newTestAdapter(t, b)

	txs, err := adapter.GetTransactionsByAddress(context.Background(), testAddress, 0, 5, config.NetworkMainnet)
	if err != nil {
		t.Fatalf("GetTransactionsByAddress() error: %v", err)
	}
	ok := txs["0xok"]
	if ok.Status != types.StatusConfirmed || ok.Timestamp != 1550000000000 || !ok.Value.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("unexpected transaction %+v", ok)
	}
	if !ok.Fee.Equal(decimal.RequireFromString("0.00021")) {
		t.Errorf("fee = %s", ok.Fee)
	}
	if txs["0xbad"].Status != types.StatusFailed {
		t.Errorf("failed transaction status = %s", txs["0xbad"].Status)
	}
}

func TestTopAndSearchTokens(t *testing.T) {
	b := &backend{getBodies: map[string]string{
		"/api/token/aion":        `[{"symbol":"PLAT"}]`,
		"/api/token/aion/search": `[{"symbol":"GOLD"}]`,
	}}
	adapter := newTestAdapter(t, b)

	top, err := adapter.GetTopTokens(context.Background(), 10)
	if err != nil || string(top) != `[{"symbol":"PLAT"}]` {
		t.Errorf("GetTopTokens() = %s, %v", top, err)
	}
	found, err := adapter.SearchTokens(context.Background(), "GO")
	if err != nil || string(found) != `[{"symbol":"GOLD"}]` {
		t.Errorf("SearchTokens() = %s, %v", found, err)
	}
	if !strings.HasSuffix(b.urls[0], "/api/token/aion?offset=0&limit=10") || !strings.HasSuffix(b.urls[1], "keyword=GO") {
		t.Errorf("urls = %v", b.urls)
	}
}

func TestAddressHelpers(t *testing.T) {
	adapter := New(coins.NewEnv(nil, nil, nil, nil))

	if !adapter.SameAddress(testAddress, strings.ToUpper(strings.TrimPrefix(testAddress, "0x"))) {
		t.Errorf("SameAddress should ignore case and prefix")
	}
	if adapter.SameAddress(testAddress, testContract) {
		t.Errorf("SameAddress(different) = true")
	}
	if got := adapter.FormatAddress1Line(testAddress); got != "0xa0c2d8ec3a...4b7e0f3a26" {
		t.Errorf("FormatAddress1Line() = %s", got)
	}
	if got := adapter.FormatAddress1Line("0xa0c2"); got != "0xa0c2" {
		t.Errorf("FormatAddress1Line(short) = %s", got)
	}

	link, err := adapter.GetTransactionExplorerURL("0xhash", config.NetworkMainnet)
	if err != nil || link != "https://mainnet.aion.network/#/transaction/0xhash" {
		t.Errorf("GetTransactionExplorerURL() = %s, %v", link, err)
	}
	if _, err := adapter.GetTransactionExplorerURL("0xhash", "ropsten"); !errors.Is(err, config.ErrUnknownNetwork) {
		t.Errorf("GetTransactionExplorerURL(unknown) error = %v", err)
	}
}

func TestValidateBalanceSufficiency(t *testing.T) {
	b := &backend{rpcResults: map[string]any{
		"eth_getBalance":          "0xde0b6b3a7640000", // 1 AION
		selectorKey(SigBalanceOf): word(big.NewInt(500)),
	}}
	adapter := newTestAdapter(t, b)
	account := types.Account{Symbol: Symbol, Address: testAddress}
	ctx := context.Background()

	cases := []struct {
		name   string
		symbol string
		amount string
		extra  types.ExtraParams
		want   bool
	}{
		{"native enough", Symbol, "0.5", types.ExtraParams{}, true},
		{"native short", Symbol, "1", types.ExtraParams{}, false},
		{"token enough", "PLAT", "5", types.ExtraParams{ContractAddress: testContract, TokenDecimals: 2}, true},
		{"token short", "PLAT", "5.01", types.ExtraParams{ContractAddress: testContract, TokenDecimals: 2}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := adapter.ValidateBalanceSufficiency(ctx, account, tc.symbol,
				decimal.RequireFromString(tc.amount), tc.extra, config.NetworkMainnet)
			if err != nil {
				t.Fatalf("ValidateBalanceSufficiency() error: %v", err)
			}
			if got.Result != tc.want {
				t.Errorf("result = %+v, want %v", got, tc.want)
			}
			if !got.Result && got.Err == "" {
				t.Errorf("insufficient result should carry a reason")
			}
		})
	}
}
