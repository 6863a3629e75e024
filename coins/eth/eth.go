// Package eth is the Ethereum adapter. Node calls go to the configured JSON-RPC endpoint and
// account history comes from the network's explorer API (etherscan or ethplorer).
package eth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/walletsdk/chains/evm"
	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	// Symbol is the coin symbol of Ether.
	Symbol = "ETH"

	// Decimals of Ether.
	Decimals = 18

	coin = "eth"

	defaultGasLimit = 21000
	tokenGasLimit   = 60000
)

var erc20 = evm.MustContract(evm.ERC20ABI)

// Adapter implements the ETH coin.
type Adapter struct {
	env  *coins.Env
	node *evm.Node
}

// New creates the Ethereum adapter.
func New(env *coins.Env) *Adapter {
	return &Adapter{env: env, node: evm.NewNode(env.RPC)}
}

// Symbol returns the ticker the adapter is registered under.
func (a *Adapter) Symbol() string { return Symbol }

// GetBalance fetches the Ether balance of address.
func (a *Adapter) GetBalance(ctx context.Context, address, network string) (decimal.Decimal, error) {
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return decimal.Zero, err
	}
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

// GetTransactionExplorerURL returns the explorer page of a transaction.
func (a *Adapter) GetTransactionExplorerURL(hash, network string) (string, error) {
	return a.env.ExplorerTxURL(coin, network, hash)
}

// GetTokenIconURL returns the icon of an ERC20 token.
func (a *Adapter) GetTokenIconURL(symbol, contractAddress string) (string, error) {
	if symbol == "" {
		return "", fmt.Errorf("token symbol is required")
	}
	return a.env.TokenIconURL(coin, symbol), nil
}

// SameAddress reports whether two addresses are equal regardless of checksum casing.
func (a *Adapter) SameAddress(address1, address2 string) bool {
	return strings.EqualFold(strings.TrimPrefix(address1, "0x"), strings.TrimPrefix(address2, "0x"))
}

// FormatAddress1Line returns the EIP-55 checksummed form of a valid address.
func (a *Adapter) FormatAddress1Line(address string) string {
	if !common.IsHexAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

// ValidateBalanceSufficiency checks that the account can pay amount of symbol plus gas.
func (a *Adapter) ValidateBalanceSufficiency(ctx context.Context, account types.Account, symbol string,
	amount decimal.Decimal, extra types.ExtraParams, network string) (types.Sufficiency, error) {

	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return types.Sufficiency{}, err
	}

	gasPrice := extra.GasPrice
	if gasPrice == nil {
		if gasPrice, err = a.node.GetGasPrice(ctx, endpoint); err != nil {
			return types.Sufficiency{}, fmt.Errorf("failed to fetch gas price: %w", err)
		}
	}
	gasLimit := extra.GasLimit
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
		if !isNative(symbol) {
			gasLimit = tokenGasLimit
		}
	}
	fee := coins.FromUnits(new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit)), Decimals)

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
