// Package api is the single entry point of the SDK. A Client enables a set of coins and
// forwards every wallet operation to the adapter of the named coin.
//
// Files:
//
//	facade.go     - Client, options and the dispatched operations
//	capability.go - the optional operation interfaces an adapter may implement
//	registry.go   - built in coins (AION, ETH, BTC) and their default networks
//	errors.go     - dispatch errors
//
// Usage:
//
//	client, err := api.NewClient([]string{"AION", "ETH"}, false)
//	balance, err := client.GetBalance(ctx, "ETH", address)
//	tokens, err := client.FetchAccountTokens(ctx, "AION", address, "")
//
// Operations a coin does not support fail with ErrUnimplemented, except
// ValidateBalanceSufficiency (always sufficient) and FormatAddress1Line (address unchanged).
package api
