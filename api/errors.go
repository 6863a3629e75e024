package api

import "errors"

var (
	// ErrUnsupportedCoin is returned for a symbol that has no adapter or was not enabled.
	ErrUnsupportedCoin = errors.New("unsupported coin")

	// ErrUnimplemented is returned when the adapter of a coin lacks the requested operation.
	ErrUnimplemented = errors.New("operation not implemented")

	// ErrCoinNotInitialized is returned when configuring a coin that was not enabled.
	ErrCoinNotInitialized = errors.New("coin not initialized")
)
