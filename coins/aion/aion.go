// Package aion is the AION adapter. AION nodes speak the Ethereum JSON-RPC dialect, so node
// calls go through chains/evm; account history and token listings come from the AION
// dashboard API.
package aion

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/walletsdk/chains/evm"
	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/shopspring/decimal"
)

const (
	// Symbol is the coin symbol of AION.
	Symbol = "AION"

	// Decimals of the native coin.
	Decimals = 18

	coin = "aion"

	// energy defaults used when the caller gives none
	defaultNrgPrice = 10000000000
	defaultNrgLimit = 21000
	tokenNrgLimit   = 90000
)

// Adapter implements the AION coin.
type Adapter struct {
	env  *coins.Env
	node *evm.Node
}

// New creates the AION adapter.
func New(env *coins.Env) *Adapter {
	return &Adapter{env: env, node: evm.NewNode(env.RPC)}
}

// Symbol returns the ticker the adapter is registered under.
func (a *Adapter) Symbol() string { return Symbol }

// GetBalance fetches the AION balance of address.
func (a *Adapter) GetBalance(ctx context.Context, address, network string) (decimal.Decimal, error) {
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return decimal.Zero, err
	}
	a.env.Log.DebugContext(ctx, "get balance", "coin", Symbol, "network", network, "address", address)

	balance, err := a.node.GetBalance(ctx, endpoint, address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return coins.FromUnits(balance, Decimals), nil
}

// GetBlockNumber fetches the latest block number.
func (a *Adapter) GetBlockNumber(ctx context.Context, network string) (uint64, error) {
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return 0, err
	}
	return a.node.BlockNumber(ctx, endpoint)
}

// GetBlockByNumber fetches a block header.
func (a *Adapter) GetBlockByNumber(ctx context.Context, number uint64, network string) (*types.Block, error) {
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return nil, err
	}
	return a.node.GetBlockByNumber(ctx, endpoint, number)
}

// GetTransactionStatus reads the receipt of hash.
func (a *Adapter) GetTransactionStatus(ctx context.Context, hash, network string) (*types.TxStatus, error) {
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return nil, err
	}
	return a.node.GetTransactionStatus(ctx, endpoint, hash)
}

// GetTransactionExplorerURL returns the dashboard page of a transaction.
func (a *Adapter) GetTransactionExplorerURL(hash, network string) (string, error) {
	return a.env.ExplorerTxURL(coin, network, hash)
}

// GetTokenIconURL returns the icon of an AION token.
func (a *Adapter) GetTokenIconURL(symbol, contractAddress string) (string, error) {
	if symbol == "" {
		return "", fmt.Errorf("token symbol is required")
	}
	return a.env.TokenIconURL(coin, symbol), nil
}

// SameAddress reports whether two AION addresses are equal, ignoring case and the 0x prefix.
func (a *Adapter) SameAddress(address1, address2 string) bool {
	return strings.EqualFold(strip0x(address1), strip0x(address2))
}

// FormatAddress1Line shortens an address to its first and last ten hex digits.
func (a *Adapter) FormatAddress1Line(address string) string {
	pre := 0
	if strings.HasPrefix(address, "0x") {
		pre = 2
	}
	if len(address) <= pre+20 {
		return address
	}
	return address[:pre+10] + "..." + address[len(address)-10:]
}

// ValidateBalanceSufficiency checks that the account can pay amount of symbol plus the energy
// fee. Token transfers need the token balance for amount and the AION balance for the fee.
func (a *Adapter) ValidateBalanceSufficiency(ctx context.Context, account types.Account, symbol string,
	amount decimal.Decimal, extra types.ExtraParams, network string) (types.Sufficiency, error) {

	nrgPrice := extra.GasPrice
	if nrgPrice == nil {
		nrgPrice = big.NewInt(defaultNrgPrice)
	}
	nrgLimit := extra.GasLimit
	if nrgLimit == 0 {
		nrgLimit = defaultNrgLimit
		if !isNative(symbol) {
			nrgLimit = tokenNrgLimit
		}
	}
	fee := coins.FromUnits(new(big.Int).Mul(nrgPrice, new(big.Int).SetUint64(nrgLimit)), Decimals)

	balance, err := a.GetBalance(ctx, account.Address, network)
	if err != nil {
		return types.Sufficiency{}, err
	}

	if isNative(symbol) {
		if balance.LessThan(amount.Add(fee)) {
			return types.Sufficiency{Err: "error_insufficient_amount"}, nil
		}
		return types.Sufficiency{Result: true}, nil
	}

	if balance.LessThan(fee) {
		return types.Sufficiency{Err: "error_insufficient_amount"}, nil
	}
	if extra.ContractAddress == "" {
		return types.Sufficiency{}, fmt.Errorf("contract address is required for token %s", symbol)
	}
	raw, err := a.FetchAccountTokenBalance(ctx, extra.ContractAddress, account.Address, network)
	if err != nil {
		return types.Sufficiency{}, err
	}
	if coins.FromUnits(raw, extra.TokenDecimals).LessThan(amount) {
		return types.Sufficiency{Err: "error_insufficient_amount"}, nil
	}
	return types.Sufficiency{Result: true}, nil
}

func isNative(symbol string) bool {
	return symbol == "" || strings.EqualFold(symbol, Symbol)
}

func strip0x(address string) string {
	return strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X")
}
