package api

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/chinmay1088/walletsdk/types"
	"github.com/shopspring/decimal"
)

// Adapter is the only method every coin adapter has. Everything else is optional and is
// discovered by asserting the interfaces below at call time.
type Adapter interface {
	Symbol() string
}

// Capability names an optional adapter operation.
type Capability string

// capabilities
const (
	CapBalance             Capability = "getBalance"
	CapBlockNumber         Capability = "getBlockNumber"
	CapBlockByNumber       Capability = "getBlockByNumber"
	CapTransactionStatus   Capability = "getTransactionStatus"
	CapTransactions        Capability = "getTransactionsByAddress"
	CapExplorerURL         Capability = "getTransactionExplorerUrl"
	CapTokenIconURL        Capability = "getTokenIconUrl"
	CapSendTransaction     Capability = "sendTransaction"
	CapBalanceSufficiency  Capability = "validateBalanceSufficiency"
	CapSameAddress         Capability = "sameAddress"
	CapFormatAddress       Capability = "formatAddress1Line"
	CapTokenDetail         Capability = "fetchTokenDetail"
	CapAccountTokens       Capability = "fetchAccountTokens"
	CapAccountTokenBalance Capability = "fetchAccountTokenBalance"
	CapTokenHistory        Capability = "fetchAccountTokenTransferHistory"
	CapTopTokens           Capability = "getTopTokens"
	CapSearchTokens        Capability = "searchTokens"
)

// BalanceGetter reads native balances.
type BalanceGetter interface {
	GetBalance(ctx context.Context, address, network string) (decimal.Decimal, error)
}

// BlockNumberGetter reads the height of the chain.
type BlockNumberGetter interface {
	GetBlockNumber(ctx context.Context, network string) (uint64, error)
}

// BlockGetter reads blocks by height.
type BlockGetter interface {
	GetBlockByNumber(ctx context.Context, number uint64, network string) (*types.Block, error)
}

// TransactionStatusGetter reads the receipt status of a transaction.
type TransactionStatusGetter interface {
	GetTransactionStatus(ctx context.Context, hash, network string) (*types.TxStatus, error)
}

// TransactionLister pages through the transaction history of an address.
type TransactionLister interface {
	GetTransactionsByAddress(ctx context.Context, address string, page, size int, network string) (types.Transactions, error)
}

// ExplorerLinker links transactions to a block explorer.
type ExplorerLinker interface {
	GetTransactionExplorerURL(hash, network string) (string, error)
}

// TokenIconLinker links token icons on the remote backend.
type TokenIconLinker interface {
	GetTokenIconURL(symbol, contractAddress string) (string, error)
}

// TransactionSender signs and optionally broadcasts transfers.
type TransactionSender interface {
	SendTransaction(ctx context.Context, account types.Account, symbol, to string, value decimal.Decimal,
		extra types.ExtraParams, data []byte, network string, broadcast bool) (*types.SendResult, error)
}

// SufficiencyValidator checks an account can pay for a transfer.
type SufficiencyValidator interface {
	ValidateBalanceSufficiency(ctx context.Context, account types.Account, symbol string, amount decimal.Decimal,
		extra types.ExtraParams, network string) (types.Sufficiency, error)
}

// AddressComparer compares addresses in the coin's own notation.
type AddressComparer interface {
	SameAddress(address1, address2 string) bool
}

// AddressFormatter shortens addresses for display.
type AddressFormatter interface {
	FormatAddress1Line(address string) string
}

// TokenDetailFetcher reads token metadata from a contract.
type TokenDetailFetcher interface {
	FetchTokenDetail(ctx context.Context, contractAddress, network string) (*types.TokenDetail, error)
}

// AccountTokensFetcher lists the tokens an address holds.
type AccountTokensFetcher interface {
	FetchAccountTokens(ctx context.Context, address, network string) (types.Tokens, error)
}

// TokenBalanceFetcher reads token balances in base units.
type TokenBalanceFetcher interface {
	FetchAccountTokenBalance(ctx context.Context, contractAddress, address, network string) (*big.Int, error)
}

// TokenHistoryFetcher pages through token transfers of an address.
type TokenHistoryFetcher interface {
	FetchAccountTokenTransferHistory(ctx context.Context, address, contractAddress string, page, size int, network string) (types.Transactions, error)
}

// TopTokensFetcher lists popular tokens from the remote backend.
type TopTokensFetcher interface {
	GetTopTokens(ctx context.Context, topN int) (json.RawMessage, error)
}

// TokenSearcher searches the remote backend's token list.
type TokenSearcher interface {
	SearchTokens(ctx context.Context, keyword string) (json.RawMessage, error)
}

// CapabilitiesOf lists the optional operations adapter implements.
func CapabilitiesOf(adapter Adapter) []Capability {
	checks := []struct {
		name Capability
		ok   bool
	}{
		{CapBalance, is[BalanceGetter](adapter)},
		{CapBlockNumber, is[BlockNumberGetter](adapter)},
		{CapBlockByNumber, is[BlockGetter](adapter)},
		{CapTransactionStatus, is[TransactionStatusGetter](adapter)},
		{CapTransactions, is[TransactionLister](adapter)},
		{CapExplorerURL, is[ExplorerLinker](adapter)},
		{CapTokenIconURL, is[TokenIconLinker](adapter)},
		{CapSendTransaction, is[TransactionSender](adapter)},
		{CapBalanceSufficiency, is[SufficiencyValidator](adapter)},
		{CapSameAddress, is[AddressComparer](adapter)},
		{CapFormatAddress, is[AddressFormatter](adapter)},
		{CapTokenDetail, is[TokenDetailFetcher](adapter)},
		{CapAccountTokens, is[AccountTokensFetcher](adapter)},
		{CapAccountTokenBalance, is[TokenBalanceFetcher](adapter)},
		{CapTokenHistory, is[TokenHistoryFetcher](adapter)},
		{CapTopTokens, is[TopTokensFetcher](adapter)},
		{CapSearchTokens, is[TokenSearcher](adapter)},
	}

	var out []Capability
	for _, c := range checks {
		if c.ok {
			out = append(out, c.name)
		}
	}
	return out
}

func is[T any](adapter Adapter) bool {
	_, ok := adapter.(T)
	return ok
}
