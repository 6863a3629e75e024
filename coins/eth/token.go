package eth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/chinmay1088/walletsdk/chains/evm"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// ErrTokenDetail is returned when a token contract does not answer all metadata calls.
var ErrTokenDetail = errors.New("get token detail failed")

// FetchAccountTokenBalance reads the ERC20 balance of address.
func (a *Adapter) FetchAccountTokenBalance(ctx context.Context, contractAddress, address, network string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid address: %s", address)
	}
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return nil, err
	}
	data, err := erc20.CallData(evm.MethodBalanceOf, common.HexToAddress(address))
	if err != nil {
		return nil, err
	}

	result, err := a.node.Call(ctx, endpoint, evm.CallMsg{To: contractAddress, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token balance: %w", err)
	}
	balance, err := erc20.DecodeUint(evm.MethodBalanceOf, result)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token balance: %w", err)
	}
	return balance, nil
}

// FetchTokenDetail reads symbol, name and decimals of an ERC20 contract. Tokens that return
// bytes32 instead of string are decoded as NUL terminated ASCII.
func (a *Adapter) FetchTokenDetail(ctx context.Context, contractAddress, network string) (*types.TokenDetail, error) {
	endpoint, err := a.env.Endpoint(coin, network)
	if err != nil {
		return nil, err
	}

	var symbol, name, decimals string
	call := func(ctx context.Context, method string, out *string) error {
		data, err := erc20.CallData(method)
		if err != nil {
			return err
		}
		result, err := a.node.Call(ctx, endpoint, evm.CallMsg{To: contractAddress, Data: data})
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrTokenDetail, method, err)
		}
		if result == "" || result == "0x" {
			return fmt.Errorf("%w: empty %s", ErrTokenDetail, method)
		}
		*out = result
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return call(gctx, evm.MethodSymbol, &symbol) })
	g.Go(func() error { return call(gctx, evm.MethodName, &name) })
	g.Go(func() error { return call(gctx, evm.MethodDecimals, &decimals) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d, err := erc20.DecodeUint(evm.MethodDecimals, decimals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenDetail, err)
	}
	if !d.IsUint64() || d.Uint64() > 255 {
		return nil, fmt.Errorf("%w: decimals out of range: %s", ErrTokenDetail, d)
	}

	return &types.TokenDetail{
		ContractAddr: contractAddress,
		Symbol:       erc20.DecodeString(evm.MethodSymbol, symbol),
		Name:         erc20.DecodeString(evm.MethodName, name),
		Decimals:     uint8(d.Uint64()),
	}, nil
}

// GetTopTokens returns the backend's list of popular ERC20 tokens as served.
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
