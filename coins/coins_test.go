package coins

import (
	"errors"
	"math/big"
	"testing"

	"github.com/chinmay1088/walletsdk/config"
	"github.com/chinmay1088/walletsdk/remote"
	"github.com/shopspring/decimal"
)

func TestEnvEndpoints(t *testing.T) {
	env := NewEnv(nil, nil, nil, nil)

	endpoint, err := env.Endpoint("AION", config.NetworkMainnet)
	if err != nil || endpoint != "https://aion.api.nodesmith.io/v1/mainnet/jsonrpc" {
		t.Errorf("Endpoint() = %q, %v", endpoint, err)
	}
	if _, err := env.Endpoint("btc", config.NetworkMainnet); err == nil {
		t.Errorf("expected error for coin without jsonrpc")
	}
	if _, err := env.Endpoint("aion", "nowhere"); !errors.Is(err, config.ErrUnknownNetwork) {
		t.Errorf("Endpoint(unknown) error = %v", err)
	}

	link, err := env.ExplorerTxURL("aion", config.NetworkMastery, "0xabc")
	if err != nil || link != "https://mastery.aion.network/#/transaction/0xabc" {
		t.Errorf("ExplorerTxURL() = %q, %v", link, err)
	}
}

func TestEnvRemoteURLs(t *testing.T) {
	env := NewEnv(nil, nil, nil, nil)
	env.Remote.Set(string(remote.Prod))

	if got := env.TokenIconURL("aion", "PLAT"); got != "https://www.chaion.net/token/aion/PLAT.png" {
		t.Errorf("TokenIconURL() = %s", got)
	}
	if got := env.TopTokensURL("aion", 20); got != "https://www.chaion.net/makkii/token/aion?offset=0&limit=20" {
		t.Errorf("TopTokensURL() = %s", got)
	}
	if got := env.SearchTokensURL("eth", "a b"); got != "https://www.chaion.net/makkii/token/eth/search?keyword=a+b" {
		t.Errorf("SearchTokensURL() = %s", got)
	}
}

func TestUnits(t *testing.T) {
	oneAndHalf, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := FromUnits(oneAndHalf, 18); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("FromUnits() = %s", got)
	}
	if got := ToUnits(decimal.RequireFromString("1.5"), 18); got.Cmp(oneAndHalf) != 0 {
		t.Errorf("ToUnits() = %s", got)
	}
	if got := ToUnits(decimal.RequireFromString("0.0000001"), 6); got.Sign() != 0 {
		t.Errorf("ToUnits() should truncate, got %s", got)
	}
	if !FromUnits(nil, 8).IsZero() {
		t.Errorf("FromUnits(nil) should be zero")
	}
}
