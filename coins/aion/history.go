package aion

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/chinmay1088/walletsdk/types"
	"github.com/shopspring/decimal"
)

type dashboardTransactions struct {
	Content []struct {
		TransactionHash      string          `json:"transactionHash"`
		TransactionTimestamp int64           `json:"transactionTimestamp"` // microseconds
		FromAddr             string          `json:"fromAddr"`
		ToAddr               string          `json:"toAddr"`
		Value                decimal.Decimal `json:"value"`
		BlockNumber          uint64          `json:"blockNumber"`
		TxError              string          `json:"txError"`
		NrgConsumed          int64           `json:"nrgConsumed"`
		NrgPrice             int64           `json:"nrgPrice"`
	} `json:"content"`
}

// GetTransactionsByAddress fetches one page of AION transfers of address from the dashboard.
func (a *Adapter) GetTransactionsByAddress(ctx context.Context, address string, page, size int, network string) (types.Transactions, error) {
	api, err := a.env.ExplorerAPI(coin, network)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("accountAddress", strings.ToLower(address))
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	endpoint := api.URL + "/aion/dashboard/getTransactionsByAddress?" + query.Encode()

	var resp dashboardTransactions
	if err := a.env.RPC.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	txs := types.Transactions{}
	for _, t := range resp.Content {
		status := types.StatusConfirmed
		if t.TxError != "" {
			status = types.StatusFailed
		}
		tx := types.Transaction{
			Hash:        "0x" + t.TransactionHash,
			Timestamp:   t.TransactionTimestamp / 1000,
			From:        "0x" + t.FromAddr,
			To:          "0x" + t.ToAddr,
			Value:       t.Value,
			Status:      status,
			BlockNumber: t.BlockNumber,
			Fee:         decimal.New(t.NrgConsumed, 0).Mul(decimal.New(t.NrgPrice, -Decimals)),
		}
		txs[tx.Hash] = tx
	}
	return txs, nil
}
