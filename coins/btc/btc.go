// Package btc is the Bitcoin adapter. Every call goes to the blockchain.info style explorer
// API of the selected network; there is no node connection.
package btc

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/chinmay1088/walletsdk/chains/bitcoin"
	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/rpc"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/shopspring/decimal"
)

const (
	// Symbol is the coin symbol of Bitcoin.
	Symbol = "BTC"

	coin = "btc"

	// DefaultFeeRate in satoshi per byte.
	DefaultFeeRate = 10
)

// Adapter implements the BTC coin.
type Adapter struct {
	env *coins.Env
}

// New creates the Bitcoin adapter.
func New(env *coins.Env) *Adapter {
	return &Adapter{env: env}
}

// Symbol returns the ticker the adapter is registered under.
func (a *Adapter) Symbol() string { return Symbol }

func (a *Adapter) api(network string) (string, error) {
	api, err := a.env.ExplorerAPI(coin, network)
	if err != nil {
		return "", err
	}
	return api.URL, nil
}

// GetBalance fetches the confirmed balance of address in BTC.
func (a *Adapter) GetBalance(ctx context.Context, address, network string) (decimal.Decimal, error) {
	api, err := a.api(network)
	if err != nil {
		return decimal.Zero, err
	}

	// blockchain.info returns the address as key of the JSON object
	var result map[string]struct {
		FinalBalance int64 `json:"final_balance"`
	}
	if err := a.env.RPC.GetJSON(ctx, api+"/balance?active="+url.QueryEscape(address), &result); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch balance: %w", err)
	}
	addrData, exists := result[address]
	if !exists {
		return decimal.Zero, fmt.Errorf("address data not found in response")
	}
	return bitcoin.SatoshisToBTC(addrData.FinalBalance), nil
}

// GetBlockNumber fetches the height of the chain tip.
func (a *Adapter) GetBlockNumber(ctx context.Context, network string) (uint64, error) {
	api, err := a.api(network)
	if err != nil {
		return 0, err
	}
	body, err := a.env.RPC.Get(ctx, api+"/q/getblockcount")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch block count: %w", err)
	}
	height, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block count: %w", err)
	}
	return height, nil
}

// GetTransactionStatus reports a transaction as confirmed once it is in a block.
func (a *Adapter) GetTransactionStatus(ctx context.Context, hash, network string) (*types.TxStatus, error) {
	api, err := a.api(network)
	if err != nil {
		return nil, err
	}
	var tx struct {
		BlockHeight *uint64 `json:"block_height"`
	}
	if err := a.env.RPC.GetJSON(ctx, api+"/rawtx/"+hash, &tx); err != nil {
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	if tx.BlockHeight == nil {
		return &types.TxStatus{Status: types.StatusPending}, nil
	}
	return &types.TxStatus{Status: types.StatusConfirmed, BlockNumber: *tx.BlockHeight}, nil
}

type rawAddr struct {
	Txs []struct {
		Hash        string  `json:"hash"`
		BlockHeight *uint64 `json:"block_height"`
		Time        int64   `json:"time"`
		Fee         int64   `json:"fee"`
		Inputs      []struct {
			PrevOut struct {
				Addr  string `json:"addr"`
				Value int64  `json:"value"`
			} `json:"prev_out"`
		} `json:"inputs"`
		Out []struct {
			Addr  string `json:"addr"`
			Value int64  `json:"value"`
		} `json:"out"`
	} `json:"txs"`
}

// GetTransactionsByAddress fetches one page (zero based) of the history of address. Value is
// what the transaction moved into or out of address, always positive; From and To tell the
// direction.
func (a *Adapter) GetTransactionsByAddress(ctx context.Context, address string, page, size int, network string) (types.Transactions, error) {
	api, err := a.api(network)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/rawaddr/%s?limit=%d&offset=%d", api, url.PathEscape(address), size, page*size)

	var result rawAddr
	if err := a.env.RPC.GetJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	txs := types.Transactions{}
	for _, t := range result.Txs {
		var spent, received int64
		var from, to string
		for _, in := range t.Inputs {
			if from == "" {
				from = in.PrevOut.Addr
			}
			if in.PrevOut.Addr == address {
				spent += in.PrevOut.Value
			}
		}
		for _, out := range t.Out {
			if out.Addr == address {
				received += out.Value
			} else if to == "" {
				to = out.Addr
			}
		}

		var value int64
		if spent > 0 {
			// outgoing: what left address other than the change and the fee
			from = address
			value = spent - received - t.Fee
		} else {
			to = address
			value = received
		}

		tx := types.Transaction{
			Hash:      t.Hash,
			Timestamp: t.Time * 1000,
			From:      from,
			To:        to,
			Value:     bitcoin.SatoshisToBTC(value),
			Status:    types.StatusPending,
			Fee:       bitcoin.SatoshisToBTC(t.Fee),
		}
		if t.BlockHeight != nil {
			tx.Status = types.StatusConfirmed
			tx.BlockNumber = *t.BlockHeight
		}
		txs[tx.Hash] = tx
	}
	return txs, nil
}

// GetTransactionExplorerURL returns the explorer page of a transaction.
func (a *Adapter) GetTransactionExplorerURL(hash, network string) (string, error) {
	return a.env.ExplorerTxURL(coin, network, hash)
}

// SameAddress compares two addresses. Base58 addresses are case sensitive, bech32 ones are not.
func (a *Adapter) SameAddress(address1, address2 string) bool {
	if address1 == address2 {
		return true
	}
	lower := strings.ToLower(address1)
	if strings.HasPrefix(lower, "bc1") || strings.HasPrefix(lower, "tb1") {
		return strings.EqualFold(address1, address2)
	}
	return false
}

type unspentResponse struct {
	UnspentOutputs []struct {
		TxHashBigEndian string `json:"tx_hash_big_endian"`
		TxOutputN       uint32 `json:"tx_output_n"`
		Script          string `json:"script"`
		Value           int64  `json:"value"`
	} `json:"unspent_outputs"`
}

// GetUTXOs lists the unspent outputs of address.
func (a *Adapter) GetUTXOs(ctx context.Context, address, network string) ([]*bitcoin.UTXO, error) {
	api, err := a.api(network)
	if err != nil {
		return nil, err
	}

	var resp unspentResponse
	err = a.env.RPC.GetJSON(ctx, api+"/unspent?active="+url.QueryEscape(address), &resp)
	var statusErr *rpc.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == 500 && strings.Contains(statusErr.Body, "No free outputs") {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch UTXOs: %w", err)
	}

	utxos := make([]*bitcoin.UTXO, 0, len(resp.UnspentOutputs))
	for _, u := range resp.UnspentOutputs {
		script, err := hex.DecodeString(u.Script)
		if err != nil {
			return nil, fmt.Errorf("invalid script of %s:%d: %w", u.TxHashBigEndian, u.TxOutputN, err)
		}
		utxos = append(utxos, &bitcoin.UTXO{
			TxID:   u.TxHashBigEndian,
			Vout:   u.TxOutputN,
			Value:  u.Value,
			Script: script,
		})
	}
	return utxos, nil
}

// SendTransaction pays value BTC from the account to to with a P2PKH transaction. The private
// key may be WIF or hex; a hex key signs with the compressed public key.
func (a *Adapter) SendTransaction(ctx context.Context, account types.Account, symbol, to string,
	value decimal.Decimal, extra types.ExtraParams, data []byte, network string, broadcast bool) (*types.SendResult, error) {

	if symbol != "" && !strings.EqualFold(symbol, Symbol) {
		return nil, fmt.Errorf("bitcoin has no token %s", symbol)
	}
	if len(data) > 0 {
		return nil, fmt.Errorf("bitcoin transactions carry no data")
	}

	kp := ParsePrivateKey(account.PrivateKey, Options{Network: network, Compressed: true})
	if kp == nil {
		return nil, fmt.Errorf("invalid private key for %s", network)
	}
	if account.Address != "" && kp.Address != account.Address {
		return nil, fmt.Errorf("private key does not match address %s", account.Address)
	}
	from, err := bitcoin.ParseAddress(kp.Address, kp.Params())
	if err != nil {
		return nil, err
	}
	recipient, err := bitcoin.ParseAddress(to, kp.Params())
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	amount := bitcoin.BTCToSatoshis(value)
	if amount < bitcoin.DustLimit {
		return nil, fmt.Errorf("amount %s is below the dust limit", value)
	}

	utxos, err := a.GetUTXOs(ctx, kp.Address, network)
	if err != nil {
		return nil, err
	}
	feeRate := extra.FeeRate
	if feeRate <= 0 {
		feeRate = DefaultFeeRate
	}

	tx, fee, err := bitcoin.Build(kp.Params(), utxos, kp.Key(), kp.Compressed, from, recipient, amount, feeRate)
	if err != nil {
		return nil, err
	}
	raw, err := tx.Serialize()
	if err != nil {
		return nil, err
	}
	a.env.Log.DebugContext(ctx, "built transaction", "coin", Symbol, "hash", tx.Hash(), "fee", fee)

	result := &types.SendResult{Hash: tx.Hash(), RawTx: raw}
	if !broadcast {
		return result, nil
	}

	api, err := a.api(network)
	if err != nil {
		return nil, err
	}
	a.env.Log.InfoContext(ctx, "broadcasting transaction", "coin", Symbol, "network", network, "hash", result.Hash)
	if _, err := a.env.RPC.PostForm(ctx, api+"/pushtx", url.Values{"tx": {raw}}); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	result.Broadcasted = true
	return result, nil
}
