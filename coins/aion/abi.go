package aion

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/chinmay1088/walletsdk/chains/evm"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// AION contracts speak the FastVM ABI. Method ids are the first four bytes of the
// blake2b-256 hash of the signature and values are packed in 16 byte words.
const wordSize = 16

// token method signatures
const (
	SigBalanceOf = "balanceOf(address)"
	SigName      = "name()"
	SigSymbol    = "symbol()"
	SigDecimals  = "decimals()"
)

// Selector returns the method id of a FastVM function signature.
func Selector(signature string) []byte {
	sum := blake2b.Sum256([]byte(signature))
	return sum[:4]
}

// CallData encodes a call to signature. Arguments are passed pre-packed, an address is one
// 32 byte argument.
func CallData(signature string, args ...[]byte) string {
	data := Selector(signature)
	for _, arg := range args {
		data = append(data, arg...)
	}
	return hexutil.Encode(data)
}

// DecodeUint reads the first word of a call result.
func DecodeUint(result string) (*big.Int, error) {
	raw, err := hexBytes(result)
	if err != nil {
		return nil, err
	}
	if len(raw) < wordSize {
		return nil, fmt.Errorf("short result: want %d bytes, got %d", wordSize, len(raw))
	}
	return new(big.Int).SetBytes(raw[:wordSize]), nil
}

// DecodeString reads a string result laid out as an offset word, a length word at that offset
// and the bytes. Contracts returning a fixed bytes32 value fall back to ASCII decoding.
func DecodeString(result string) string {
	if s, ok := unpackString(result); ok {
		return s
	}
	return evm.HexToASCII(result)
}

func unpackString(result string) (string, bool) {
	raw, err := hexBytes(result)
	if err != nil || len(raw) < 2*wordSize {
		return "", false
	}
	size := uint64(len(raw))

	offset := new(big.Int).SetBytes(raw[:wordSize])
	if !offset.IsUint64() || offset.Uint64() > size-wordSize {
		return "", false
	}
	start := offset.Uint64() + wordSize

	length := new(big.Int).SetBytes(raw[offset.Uint64():start])
	if !length.IsUint64() || length.Uint64() > size-start {
		return "", false
	}
	data := raw[start : start+length.Uint64()]
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func hexBytes(s string) ([]byte, error) {
	raw, err := hexutil.Decode("0x" + strip0x(s))
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	return raw, nil
}
