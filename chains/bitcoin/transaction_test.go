package bitcoin

import (
	"errors"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/shopspring/decimal"
)

func testKey(t *testing.T) (*btcec.PrivateKey, btcutil.Address) {
	t.Helper()
	key, _ := btcec.PrivKeyFromBytes([]byte(strings.Repeat("\x01", 32)))
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(key.PubKey().SerializeCompressed()), &chaincfg.TestNet3Params)
	if err != nil {
		t.Fatal(err)
	}
	return key, addr
}

func TestBuildAndVerify(t *testing.T) {
	key, from := testKey(t)
	script, err := txscript.PayToAddrScript(from)
	if err != nil {
		t.Fatal(err)
	}

	utxos := []*UTXO{
		{TxID: strings.Repeat("aa", 32), Vout: 0, Value: 40000, Script: script},
		{TxID: strings.Repeat("bb", 32), Vout: 1, Value: 100000, Script: script},
	}
	_, to := testKey(t)

	tx, fee, err := Build(&chaincfg.TestNet3Params, utxos, key, true, from, to, 50000, 10)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	msg := tx.MsgTx()
	if len(msg.TxIn) != 1 {
		t.Fatalf("inputs = %d, want 1 (largest utxo covers the payment)", len(msg.TxIn))
	}
	if len(msg.TxOut) != 2 || msg.TxOut[0].Value != 50000 {
		t.Fatalf("unexpected outputs %+v", msg.TxOut)
	}
	if fee != EstimateFee(1, 2, 10) || msg.TxOut[1].Value != 100000-50000-fee {
		t.Errorf("fee = %d change = %d", fee, msg.TxOut[1].Value)
	}

	// the signature must satisfy the spent script
	vm, err := txscript.NewEngine(script, msg, 0, txscript.StandardVerifyFlags, nil, nil, 100000,
		txscript.NewCannedPrevOutputFetcher(script, 100000))
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	if err := vm.Execute(); err != nil {
		t.Errorf("signature does not verify: %v", err)
	}

	raw, err := tx.Serialize()
	if err != nil || len(raw) == 0 {
		t.Errorf("Serialize() = %q, %v", raw, err)
	}
	if len(tx.Hash()) != 64 {
		t.Errorf("Hash() = %q", tx.Hash())
	}
}

func TestSelectUTXOsInsufficient(t *testing.T) {
	utxos := []*UTXO{{TxID: strings.Repeat("aa", 32), Value: 1000}}
	if _, _, err := SelectUTXOs(utxos, 5000, 1); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("SelectUTXOs() error = %v", err)
	}
}

func TestParseAddressNetwork(t *testing.T) {
	_, addr := testKey(t)
	if _, err := ParseAddress(addr.EncodeAddress(), &chaincfg.TestNet3Params); err != nil {
		t.Errorf("ParseAddress(testnet) error: %v", err)
	}
	if _, err := ParseAddress(addr.EncodeAddress(), &chaincfg.MainNetParams); err == nil {
		t.Errorf("expected error for testnet address on mainnet")
	}
}

func TestSatoshiConversion(t *testing.T) {
	if got := SatoshisToBTC(150000000); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("SatoshisToBTC() = %s", got)
	}
	if got := BTCToSatoshis(decimal.RequireFromString("0.000000019")); got != 1 {
		t.Errorf("BTCToSatoshis() = %d", got)
	}
}
