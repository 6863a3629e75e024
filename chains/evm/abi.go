// Package evm holds the pieces shared by adapters of account-based chains that speak the
// Ethereum JSON-RPC dialect: token contract ABI helpers and the common node calls.
package evm

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ERC20ABI is the token interface used on Ethereum.
const ERC20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// token contract methods
const (
	MethodBalanceOf = "balanceOf"
	MethodName      = "name"
	MethodSymbol    = "symbol"
	MethodDecimals  = "decimals"
	MethodTransfer  = "transfer"
)

// Contract wraps a parsed contract ABI.
type Contract struct {
	abi abi.ABI
}

// NewContract parses a JSON ABI definition.
func NewContract(definition string) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	return &Contract{abi: parsed}, nil
}

// MustContract is like NewContract but panics on a malformed definition. It is meant for
// package level ABI constants.
func MustContract(definition string) *Contract {
	c, err := NewContract(definition)
	if err != nil {
		panic(err)
	}
	return c
}

// Selector returns the 4 byte method id of method.
func (c *Contract) Selector(method string) []byte {
	m, ok := c.abi.Methods[method]
	if !ok {
		return nil
	}
	return m.ID
}

// Pack encodes a call to method.
func (c *Contract) Pack(method string, args ...any) ([]byte, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}
	return data, nil
}

// CallData encodes a call to method as a 0x prefixed hex string for eth_call.
func (c *Contract) CallData(method string, args ...any) (string, error) {
	data, err := c.Pack(method, args...)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(data), nil
}

// DecodeUint decodes the single unsigned integer returned by method. Results shorter than one
// ABI word are left padded first, so nodes returning 16 byte words decode the same way.
func (c *Contract) DecodeUint(method, result string) (*big.Int, error) {
	data := common.FromHex(result)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty %s result", method)
	}
	if len(data) < 32 {
		data = common.LeftPadBytes(data, 32)
	}

	out, err := c.abi.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values in %s result", method)
	}

	switch v := out[0].(type) {
	case *big.Int:
		return v, nil
	case uint8:
		return big.NewInt(int64(v)), nil
	case uint16:
		return big.NewInt(int64(v)), nil
	case uint32:
		return big.NewInt(int64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unexpected %s result type %T", method, out[0])
	}
}

// DecodeString decodes the string returned by method. Some deployed tokens return a fixed
// bytes32 value instead of an ABI string; those are read as ASCII up to the first NUL byte.
func (c *Contract) DecodeString(method, result string) string {
	out, err := c.abi.Unpack(method, common.FromHex(result))
	if err == nil && len(out) > 0 {
		if s, ok := out[0].(string); ok {
			return s
		}
	}
	return HexToASCII(result)
}

// HexToASCII decodes a hex payload as ASCII, stopping at the first NUL byte.
func HexToASCII(payload string) string {
	data := common.FromHex(payload)
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data)
}
