package bitcoin

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/shopspring/decimal"
)

// DustLimit is the smallest change output worth creating, in satoshis.
const DustLimit = 546

// ErrInsufficientFunds is returned when the UTXO set cannot cover amount plus fee.
var ErrInsufficientFunds = errors.New("insufficient funds")

// UTXO represents an unspent transaction output
type UTXO struct {
	TxID   string
	Vout   uint32
	Value  int64  // satoshis
	Script []byte // scriptPubKey of the output being spent
}

// Transaction is a legacy (P2PKH) transaction under construction.
type Transaction struct {
	msg    *wire.MsgTx
	params *chaincfg.Params
}

// NewTransaction creates an empty transaction for the given network.
func NewTransaction(params *chaincfg.Params) *Transaction {
	return &Transaction{msg: wire.NewMsgTx(wire.TxVersion), params: params}
}

// AddInput adds an input spending utxo.
func (tx *Transaction) AddInput(utxo *UTXO) error {
	prevHash, err := chainhash.NewHashFromStr(utxo.TxID)
	if err != nil {
		return fmt.Errorf("invalid previous transaction hash: %w", err)
	}
	tx.msg.AddTxIn(wire.NewTxIn(wire.NewOutPoint(prevHash, utxo.Vout), nil, nil))
	return nil
}

// AddOutput adds an output paying value satoshis to address.
func (tx *Transaction) AddOutput(value int64, address btcutil.Address) error {
	script, err := txscript.PayToAddrScript(address)
	if err != nil {
		return fmt.Errorf("failed to create output script: %w", err)
	}
	tx.msg.AddTxOut(wire.NewTxOut(value, script))
	return nil
}

// Sign signs every input. utxos must be in input order.
func (tx *Transaction) Sign(utxos []*UTXO, key *btcec.PrivateKey, compressed bool) error {
	if len(utxos) != len(tx.msg.TxIn) {
		return fmt.Errorf("have %d utxos for %d inputs", len(utxos), len(tx.msg.TxIn))
	}
	for i, utxo := range utxos {
		sigScript, err := txscript.SignatureScript(tx.msg, i, utxo.Script, txscript.SigHashAll, key, compressed)
		if err != nil {
			return fmt.Errorf("failed to sign input %d: %w", i, err)
		}
		tx.msg.TxIn[i].SignatureScript = sigScript
	}
	return nil
}

// Serialize serializes the transaction to hex
func (tx *Transaction) Serialize() (string, error) {
	var buf bytes.Buffer
	if err := tx.msg.Serialize(&buf); err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return fmt.Sprintf("%x", buf.Bytes()), nil
}

// Hash returns the transaction id.
func (tx *Transaction) Hash() string {
	return tx.msg.TxHash().String()
}

// MsgTx exposes the underlying wire transaction.
func (tx *Transaction) MsgTx() *wire.MsgTx {
	return tx.msg
}

// EstimateFee estimates the fee of a P2PKH transaction: 10 bytes of overhead, 148 bytes per
// signed input and 34 bytes per output.
func EstimateFee(inputCount, outputCount int, feeRate int64) int64 {
	size := 10 + inputCount*148 + outputCount*34
	return int64(size) * feeRate
}

// SelectUTXOs picks the largest outputs first until amount plus the fee of a two output
// transaction is covered. It returns the selection and the fee.
func SelectUTXOs(utxos []*UTXO, amount, feeRate int64) ([]*UTXO, int64, error) {
	sorted := make([]*UTXO, len(utxos))
	copy(sorted, utxos)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	var selected []*UTXO
	var total int64
	for _, utxo := range sorted {
		selected = append(selected, utxo)
		total += utxo.Value

		fee := EstimateFee(len(selected), 2, feeRate)
		if total >= amount+fee {
			return selected, fee, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: have %d satoshis, need %d plus fee", ErrInsufficientFunds, total, amount)
}

// Build selects inputs, adds the payment and change outputs and signs the transaction.
func Build(params *chaincfg.Params, utxos []*UTXO, key *btcec.PrivateKey, compressed bool,
	from, to btcutil.Address, amount, feeRate int64) (*Transaction, int64, error) {

	selected, fee, err := SelectUTXOs(utxos, amount, feeRate)
	if err != nil {
		return nil, 0, err
	}

	tx := NewTransaction(params)
	var total int64
	for _, utxo := range selected {
		if err := tx.AddInput(utxo); err != nil {
			return nil, 0, err
		}
		total += utxo.Value
	}
	if err := tx.AddOutput(amount, to); err != nil {
		return nil, 0, err
	}
	if change := total - amount - fee; change >= DustLimit {
		if err := tx.AddOutput(change, from); err != nil {
			return nil, 0, err
		}
	} else {
		// dust goes to the miner
		fee += change
	}

	if err := tx.Sign(selected, key, compressed); err != nil {
		return nil, 0, err
	}
	return tx, fee, nil
}

// ParseAddress parses an address for the given network.
func ParseAddress(address string, params *chaincfg.Params) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, err
	}
	if !addr.IsForNet(params) {
		return nil, fmt.Errorf("address %s is not for %s", address, params.Name)
	}
	return addr, nil
}

// SatoshisToBTC converts satoshis to BTC
func SatoshisToBTC(satoshis int64) decimal.Decimal {
	return decimal.New(satoshis, -8)
}

// BTCToSatoshis converts BTC to satoshis, truncating below one satoshi.
func BTCToSatoshis(btc decimal.Decimal) int64 {
	return btc.Shift(8).IntPart()
}
