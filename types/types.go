// Package types holds the values returned by the coin adapters. Balances and histories are
// point-in-time snapshots; nothing here is kept in sync with the chain.
package types

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Transaction statuses. Chain specific states are collapsed onto this set.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusFailed    = "FAILED"
)

// Transaction is a normalized transfer record.
type Transaction struct {
	Hash        string          `json:"hash"`
	Timestamp   int64           `json:"timestamp"` // milliseconds
	From        string          `json:"from"`
	To          string          `json:"to"`
	Value       decimal.Decimal `json:"value"`
	Status      string          `json:"status"`
	BlockNumber uint64          `json:"blockNumber"`
	Fee         decimal.Decimal `json:"fee"`
}

// Transactions is a history page keyed by transaction hash.
type Transactions map[string]Transaction

// Token is an asset held by an account. TokenTxs is filled separately from the transfer
// history of the token.
type Token struct {
	Symbol       string       `json:"symbol"`
	ContractAddr string       `json:"contractAddr"`
	Name         string       `json:"name"`
	TokenDecimal int          `json:"tokenDecimal"`
	Balance      *big.Int     `json:"balance"`
	TokenTxs     Transactions `json:"tokenTxs"`
}

// Tokens maps token symbol to token.
type Tokens map[string]Token

// TokenDetail is the metadata read from a token contract.
type TokenDetail struct {
	ContractAddr string `json:"contractAddr"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Decimals     uint8  `json:"decimals"`
}

// Block is a simplified block header with its transaction hashes.
type Block struct {
	Number       uint64   `json:"number"`
	Hash         string   `json:"hash"`
	ParentHash   string   `json:"parentHash"`
	Timestamp    uint64   `json:"timestamp"`
	Transactions []string `json:"transactions"`
}

// TxStatus is the state of a submitted transaction.
type TxStatus struct {
	Status      string `json:"status"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	GasUsed     uint64 `json:"gasUsed,omitempty"`
}

// Account is the signing identity handed to transfer operations. The SDK uses the private key
// for the duration of one call and never stores it.
type Account struct {
	Symbol     string `json:"symbol"`
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
}

// ExtraParams carries chain specific transfer parameters. Zero values mean "ask the node".
type ExtraParams struct {
	GasPrice        *big.Int `json:"gasPrice,omitempty"` // wei (or the chain's smallest unit) per gas
	GasLimit        uint64   `json:"gasLimit,omitempty"`
	ContractAddress string   `json:"contractAddress,omitempty"` // token contract when the symbol is not the native coin
	TokenDecimals   int      `json:"tokenDecimals,omitempty"`
	FeeRate         int64    `json:"feeRate,omitempty"` // satoshi per byte
}

// SendResult describes a signed (and possibly broadcast) transaction.
type SendResult struct {
	Hash        string `json:"hash"`
	RawTx       string `json:"rawTx"`
	Broadcasted bool   `json:"broadcasted"`
	Nonce       uint64 `json:"nonce,omitempty"`
}

// Sufficiency is the answer of a balance sufficiency check.
type Sufficiency struct {
	Result bool   `json:"result"`
	Err    string `json:"err,omitempty"`
}
