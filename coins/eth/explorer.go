package eth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/config"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedProvider is returned when the explorer API of a network has an unknown provider.
var ErrUnsupportedProvider = errors.New("unsupported explorer provider")

// etherscanResponse is the envelope of every etherscan account endpoint.
type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type etherscanTx struct {
	BlockNumber     string          `json:"blockNumber"`
	TimeStamp       string          `json:"timeStamp"`
	Hash            string          `json:"hash"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	ContractAddress string          `json:"contractAddress"`
	Value           decimal.Decimal `json:"value"`
	GasUsed         decimal.Decimal `json:"gasUsed"`
	GasPrice        decimal.Decimal `json:"gasPrice"`
	IsError         string          `json:"isError"`
	TokenName       string          `json:"tokenName"`
	TokenSymbol     string          `json:"tokenSymbol"`
	TokenDecimal    string          `json:"tokenDecimal"`
}

func (t etherscanTx) toTransaction(decimals int) types.Transaction {
	blockNumber, _ := strconv.ParseUint(t.BlockNumber, 10, 64)
	timestamp, _ := strconv.ParseInt(t.TimeStamp, 10, 64)
	status := types.StatusConfirmed
	if t.IsError == "1" {
		status = types.StatusFailed
	}
	return types.Transaction{
		Hash:        t.Hash,
		Timestamp:   timestamp * 1000,
		From:        t.From,
		To:          t.To,
		Value:       t.Value.Shift(int32(-decimals)),
		Status:      status,
		BlockNumber: blockNumber,
		Fee:         t.GasUsed.Mul(t.GasPrice).Shift(-Decimals),
	}
}

// etherscan calls one account action and decodes its result list.
func (a *Adapter) etherscan(ctx context.Context, api config.Explorer, query url.Values) ([]etherscanTx, error) {
	query.Set("module", "account")
	query.Set("sort", "desc")
	query.Set("apikey", a.env.Settings.String(coin, "etherscanApikey"))

	var resp etherscanResponse
	if err := a.env.RPC.GetJSON(ctx, api.URL+"?"+query.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "1" {
		// an empty history is reported as a failure
		if strings.HasPrefix(resp.Message, "No transactions found") {
			return nil, nil
		}
		var reason string
		_ = json.Unmarshal(resp.Result, &reason)
		return nil, fmt.Errorf("etherscan error: %s %s", resp.Message, reason)
	}

	var txs []etherscanTx
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, fmt.Errorf("failed to parse etherscan result: %w", err)
	}
	return txs, nil
}

func (a *Adapter) ethplorerURL(api config.Explorer, path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", a.env.Settings.String(coin, "ethplorerApiKey"))
	return api.URL + path + "?" + query.Encode()
}

// GetTransactionsByAddress fetches one page (zero based) of Ether transfers of address.
func (a *Adapter) GetTransactionsByAddress(ctx context.Context, address string, page, size int, network string) (types.Transactions, error) {
	api, err := a.env.ExplorerAPI(coin, network)
	if err != nil {
		return nil, err
	}

	txs := types.Transactions{}
	switch api.Provider {
	case config.ProviderEtherscan:
		query := url.Values{}
		query.Set("action", "txlist")
		query.Set("address", address)
		query.Set("page", strconv.Itoa(page+1))
		query.Set("offset", strconv.Itoa(size))
		list, err := a.etherscan(ctx, api, query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch transactions: %w", err)
		}
		for _, t := range list {
			txs[t.Hash] = t.toTransaction(Decimals)
		}

	case config.ProviderEthplorer:
		// ethplorer has no paging, fetch up to the end of the page and skip the rest
		query := url.Values{}
		query.Set("limit", strconv.Itoa((page+1)*size))
		var list []struct {
			Timestamp int64           `json:"timestamp"`
			From      string          `json:"from"`
			To        string          `json:"to"`
			Hash      string          `json:"hash"`
			Value     decimal.Decimal `json:"value"`
			Success   bool            `json:"success"`
		}
		if err := a.env.RPC.GetJSON(ctx, a.ethplorerURL(api, "/getAddressTransactions/"+address, query), &list); err != nil {
			return nil, fmt.Errorf("failed to fetch transactions: %w", err)
		}
		for i, t := range list {
			if i < page*size {
				continue
			}
			status := types.StatusConfirmed
			if !t.Success {
				status = types.StatusFailed
			}
			txs[t.Hash] = types.Transaction{
				Hash:      t.Hash,
				Timestamp: t.Timestamp * 1000,
				From:      t.From,
				To:        t.To,
				Value:     t.Value,
				Status:    status,
			}
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, api.Provider)
	}
	return txs, nil
}

// FetchAccountTokens lists the ERC20 tokens address holds or has held. Ethplorer reports
// balances; with etherscan the list is built from the token transfer history and balances are
// zero.
func (a *Adapter) FetchAccountTokens(ctx context.Context, address, network string) (types.Tokens, error) {
	api, err := a.env.ExplorerAPI(coin, network)
	if err != nil {
		return nil, err
	}

	tokens := types.Tokens{}
	switch api.Provider {
	case config.ProviderEthplorer:
		var info struct {
			Tokens []struct {
				TokenInfo struct {
					Address  string      `json:"address"`
					Name     string      `json:"name"`
					Symbol   string      `json:"symbol"`
					Decimals json.Number `json:"decimals"`
				} `json:"tokenInfo"`
				Balance decimal.Decimal `json:"balance"`
			} `json:"tokens"`
		}
		if err := a.env.RPC.GetJSON(ctx, a.ethplorerURL(api, "/getAddressInfo/"+address, nil), &info); err != nil {
			return nil, fmt.Errorf("failed to fetch account tokens: %w", err)
		}
		for _, t := range info.Tokens {
			decimals, _ := t.TokenInfo.Decimals.Int64()
			tokens[t.TokenInfo.Symbol] = types.Token{
				Symbol:       t.TokenInfo.Symbol,
				ContractAddr: t.TokenInfo.Address,
				Name:         t.TokenInfo.Name,
				TokenDecimal: int(decimals),
				Balance:      t.Balance.Truncate(0).BigInt(),
				TokenTxs:     types.Transactions{},
			}
		}

	case config.ProviderEtherscan:
		query := url.Values{}
		query.Set("action", "tokentx")
		query.Set("address", address)
		query.Set("page", "1")
		query.Set("offset", "100")
		list, err := a.etherscan(ctx, api, query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch account tokens: %w", err)
		}
		for _, t := range list {
			if _, ok := tokens[t.TokenSymbol]; ok {
				continue
			}
			decimals, _ := strconv.Atoi(t.TokenDecimal)
			tokens[t.TokenSymbol] = types.Token{
				Symbol:       t.TokenSymbol,
				ContractAddr: t.ContractAddress,
				Name:         t.TokenName,
				TokenDecimal: decimals,
				Balance:      new(big.Int),
				TokenTxs:     types.Transactions{},
			}
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, api.Provider)
	}
	return tokens, nil
}

// FetchAccountTokenTransferHistory fetches one page (zero based) of transfers of one token.
// Values are in token units.
func (a *Adapter) FetchAccountTokenTransferHistory(ctx context.Context, address, contractAddress string,
	page, size int, network string) (types.Transactions, error) {

	api, err := a.env.ExplorerAPI(coin, network)
	if err != nil {
		return nil, err
	}

	txs := types.Transactions{}
	switch api.Provider {
	case config.ProviderEtherscan:
		query := url.Values{}
		query.Set("action", "tokentx")
		query.Set("address", address)
		query.Set("contractaddress", contractAddress)
		query.Set("page", strconv.Itoa(page+1))
		query.Set("offset", strconv.Itoa(size))
		list, err := a.etherscan(ctx, api, query)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch token transfers: %w", err)
		}
		for _, t := range list {
			decimals, _ := strconv.Atoi(t.TokenDecimal)
			tx := t.toTransaction(decimals)
			tx.Fee = decimal.Zero
			txs[t.Hash] = tx
		}

	case config.ProviderEthplorer:
		query := url.Values{}
		query.Set("token", contractAddress)
		query.Set("type", "transfer")
		query.Set("limit", strconv.Itoa((page+1)*size))
		var history struct {
			Operations []struct {
				Timestamp       int64           `json:"timestamp"`
				TransactionHash string          `json:"transactionHash"`
				From            string          `json:"from"`
				To              string          `json:"to"`
				Value           decimal.Decimal `json:"value"`
				TokenInfo       struct {
					Decimals json.Number `json:"decimals"`
				} `json:"tokenInfo"`
			} `json:"operations"`
		}
		if err := a.env.RPC.GetJSON(ctx, a.ethplorerURL(api, "/getAddressHistory/"+address, query), &history); err != nil {
			return nil, fmt.Errorf("failed to fetch token transfers: %w", err)
		}
		for i, op := range history.Operations {
			if i < page*size {
				continue
			}
			decimals, _ := op.TokenInfo.Decimals.Int64()
			txs[op.TransactionHash] = types.Transaction{
				Hash:      op.TransactionHash,
				Timestamp: op.Timestamp * 1000,
				From:      op.From,
				To:        op.To,
				Value:     coins.FromUnits(op.Value.Truncate(0).BigInt(), int(decimals)),
				Status:    types.StatusConfirmed,
			}
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, api.Provider)
	}
	return txs, nil
}
