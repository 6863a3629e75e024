package evm

import (
	"bytes"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var erc20 = MustContract(ERC20ABI)

func encodeString(t *testing.T, s string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := abi.Arguments{{Type: stringType}}.Pack(s)
	if err != nil {
		t.Fatal(err)
	}
	return hexutil.Encode(data)
}

func TestCallData(t *testing.T) {
	owner := common.HexToAddress("0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6")
	data, err := erc20.CallData(MethodBalanceOf, owner)
	if err != nil {
		t.Fatalf("CallData() error: %v", err)
	}

	// keccak256("balanceOf(address)")[:4]
	if !strings.HasPrefix(data, "0x70a08231") {
		t.Errorf("balanceOf selector = %s", data[:10])
	}
	if len(data) != 2+8+64 {
		t.Errorf("call data length = %d", len(data))
	}
	if !bytes.Equal(erc20.Selector(MethodBalanceOf), common.FromHex("0x70a08231")) {
		t.Errorf("Selector() = %x", erc20.Selector(MethodBalanceOf))
	}
	if erc20.Selector("missing") != nil {
		t.Errorf("Selector(missing) should be nil")
	}
}

func TestDecodeString(t *testing.T) {
	cases := []struct {
		name   string
		result string
		want   string
	}{
		{"abi string", encodeString(t, "Maker"), "Maker"},
		{"bytes32 symbol", "0x4d4b520000000000000000000000000000000000000000000000000000000000", "MKR"},
		{"bytes32 without nul", "0x" + strings.Repeat("41", 32), strings.Repeat("A", 32)},
		{"empty", "0x", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := erc20.DecodeString(MethodSymbol, tc.result); got != tc.want {
				t.Errorf("DecodeString() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecodeUint(t *testing.T) {
	oneEther, _ := new(big.Int).SetString("1000000000000000000", 10)

	got, err := erc20.DecodeUint(MethodBalanceOf, hexutil.Encode(common.LeftPadBytes(oneEther.Bytes(), 32)))
	if err != nil || got.Cmp(oneEther) != 0 {
		t.Errorf("DecodeUint(32 byte word) = %v, %v", got, err)
	}

	// 16 byte word
	got, err = erc20.DecodeUint(MethodBalanceOf, "0x00000000000000000de0b6b3a7640000")
	if err != nil || got.Cmp(oneEther) != 0 {
		t.Errorf("DecodeUint(16 byte word) = %v, %v", got, err)
	}

	decimals, err := erc20.DecodeUint(MethodDecimals, hexutil.Encode(common.LeftPadBytes([]byte{18}, 32)))
	if err != nil || decimals.Int64() != 18 {
		t.Errorf("DecodeUint(decimals) = %v, %v", decimals, err)
	}

	if _, err := erc20.DecodeUint(MethodBalanceOf, "0x"); err == nil {
		t.Errorf("expected error for empty result")
	}
}

func TestHexToASCII(t *testing.T) {
	if got := HexToASCII("0x414c4c00ff"); got != "ALL" {
		t.Errorf("HexToASCII() = %q", got)
	}
}

func TestParseHex(t *testing.T) {
	if v, err := ParseHexUint("0x012d687"); err != nil || v != 1234567 {
		t.Errorf("ParseHexUint() = %d, %v", v, err)
	}
	if _, err := ParseHexUint("0x"); err == nil {
		t.Errorf("expected error for empty quantity")
	}
	if v, err := ParseHexBig("0x"); err != nil || v.Sign() != 0 {
		t.Errorf("ParseHexBig(0x) = %v, %v", v, err)
	}
	if _, err := ParseHexBig("0xzz"); err == nil {
		t.Errorf("expected error for invalid hex")
	}
}
