package aion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/chinmay1088/walletsdk/chains/evm"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrTokenDetail is returned when a token contract does not answer all metadata calls.
var ErrTokenDetail = errors.New("get token detail failed")

// AddressBytes decodes a 32 byte AION address.
func AddressBytes(address string) ([32]byte, error) {
	var out [32]byte
	raw, err := hexBytes(address)
	if err != nil {
		return out, err
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("invalid AION address %q: want 32 bytes, got %d", address, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// FetchAccountTokenBalance reads the balance of address from a token contract.
func (a *Adapter) FetchAccountTokenBalance(ctx context.Context, contractAddress, address, network string) (*big.Int, error) {
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return nil, err
	}
	owner, err := AddressBytes(address)
	if err != nil {
		return nil, err
	}
	data := CallData(SigBalanceOf, owner[:])
	a.env.Log.DebugContext(ctx, "get token balance", "coin", Symbol, "endpoint", endpoint, "contract", contractAddress)

	result, err := a.node.Call(ctx, endpoint, evm.CallMsg{To: contractAddress, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token balance: %w", err)
	}
	balance, err := DecodeUint(result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token balance: %w", err)
	}
	return balance, nil
}

// FetchTokenDetail reads symbol, name and decimals of a token contract. The three calls run
// concurrently and all of them must return a value.
func (a *Adapter) FetchTokenDetail(ctx context.Context, contractAddress, network string) (*types.TokenDetail, error) {
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return nil, err
	}
	a.env.Log.DebugContext(ctx, "get token detail", "coin", Symbol, "endpoint", endpoint, "contract", contractAddress)

	methods := []string{SigSymbol, SigName, SigDecimals}
	results := make([]string, len(methods))

	g, gctx := errgroup.WithContext(ctx)
	for i, method := range methods {
		g.Go(func() error {
			result, err := a.node.Call(gctx, endpoint, evm.CallMsg{To: contractAddress, Data: CallData(method)})
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrTokenDetail, method, err)
			}
			if strip0x(result) == "" {
				return fmt.Errorf("%w: empty %s", ErrTokenDetail, method)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	decimals, err := DecodeUint(results[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenDetail, err)
	}
	if !decimals.IsUint64() || decimals.Uint64() > 255 {
		return nil, fmt.Errorf("%w: decimals out of range: %s", ErrTokenDetail, decimals)
	}

	return &types.TokenDetail{
		ContractAddr: contractAddress,
		Symbol:       DecodeString(results[0]),
		Name:         DecodeString(results[1]),
		Decimals:     uint8(decimals.Uint64()),
	}, nil
}

type accountDetails struct {
	Content []struct {
		Tokens []struct {
			Symbol       string `json:"symbol"`
			ContractAddr string `json:"contractAddr"`
			Name         string `json:"name"`
			TokenDecimal int    `json:"tokenDecimal"`
		} `json:"tokens"`
	} `json:"content"`
}

// FetchAccountTokens lists the tokens the dashboard knows address holds. Balances are zero
// and must be read with FetchAccountTokenBalance.
func (a *Adapter) FetchAccountTokens(ctx context.Context, address, network string) (types.Tokens, error) {
	api, err := a.env.ExplorerAPI(coin, network)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/aion/dashboard/getAccountDetails?accountAddress=%s",
		api.URL, url.QueryEscape(strings.ToLower(address)))

	var details accountDetails
	if err := a.env.RPC.GetJSON(ctx, endpoint, &details); err != nil {
		return nil, fmt.Errorf("failed to fetch account tokens: %w", err)
	}

	tokens := types.Tokens{}
	if len(details.Content) == 0 {
		return tokens, nil
	}
	for _, t := range details.Content[0].Tokens {
		tokens[t.Symbol] = types.Token{
			Symbol:       t.Symbol,
			ContractAddr: t.ContractAddr,
			Name:         t.Name,
			TokenDecimal: t.TokenDecimal,
			Balance:      new(big.Int),
			TokenTxs:     types.Transactions{},
		}
	}
	return tokens, nil
}

type tokenTransfers struct {
	Content []struct {
		TransactionHash   string          `json:"transactionHash"`
		TransferTimestamp int64           `json:"transferTimestamp"`
		FromAddr          string          `json:"fromAddr"`
		ToAddr            string          `json:"toAddr"`
		TknValue          decimal.Decimal `json:"tknValue"`
		BlockNumber       uint64          `json:"blockNumber"`
	} `json:"content"`
}

// FetchAccountTokenTransferHistory fetches one page of transfers of a token by address.
func (a *Adapter) FetchAccountTokenTransferHistory(ctx context.Context, address, contractAddress string,
	page, size int, network string) (types.Transactions, error) {

	api, err := a.env.ExplorerAPI(coin, network)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("accountAddress", strings.ToLower(address))
	query.Set("tokenAddress", strings.ToLower(contractAddress))
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	endpoint := api.URL + "/aion/dashboard/getTransactionsByAddress?" + query.Encode()

	var transfers tokenTransfers
	if err := a.env.RPC.GetJSON(ctx, endpoint, &transfers); err != nil {
		return nil, fmt.Errorf("failed to fetch token transfers: %w", err)
	}

	txs := types.Transactions{}
	for _, t := range transfers.Content {
		tx := types.Transaction{
			Hash:        "0x" + t.TransactionHash,
			Timestamp:   t.TransferTimestamp * 1000,
			From:        "0x" + t.FromAddr,
			To:          "0x" + t.ToAddr,
			Value:       t.TknValue,
			Status:      types.StatusConfirmed,
			BlockNumber: t.BlockNumber,
		}
		txs[tx.Hash] = tx
	}
	return txs, nil
}

// GetTopTokens returns the backend's list of popular AION tokens as served.
func (a *Adapter) GetTopTokens(ctx context.Context, topN int) (json.RawMessage, error) {
	var out json.RawMessage
	if err := a.env.RPC.GetJSON(ctx, a.env.TopTokensURL(coin, topN), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch top tokens: %w", err)
	}
	return out, nil
}

// SearchTokens returns the backend's token search result as served.
func (a *Adapter) SearchTokens(ctx context.Context, keyword string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := a.env.RPC.GetJSON(ctx, a.env.SearchTokensURL(coin, keyword), &out); err != nil {
		return nil, fmt.Errorf("failed to search tokens: %w", err)
	}
	return out, nil
}
