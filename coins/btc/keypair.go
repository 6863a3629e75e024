package btc

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/chinmay1088/walletsdk/config"
)

// Options select the network and public key encoding of a key pair.
type Options struct {
	Network    string // mainnet (default) or testnet
	Compressed bool
}

// KeyPair is a Bitcoin key with its P2PKH address.
type KeyPair struct {
	PrivateKey string // hex
	PublicKey  string // hex, in the encoding selected by Compressed
	Address    string
	Compressed bool

	key    *btcec.PrivateKey
	params *chaincfg.Params
}

// Params returns the chain parameters of a network name, or nil if it is unknown.
func Params(network string) *chaincfg.Params {
	switch strings.ToLower(network) {
	case "", config.NetworkMainnet:
		return &chaincfg.MainNetParams
	case config.NetworkTestnet:
		return &chaincfg.TestNet3Params
	default:
		return nil
	}
}

// FromPrivateKey builds a key pair from a hex private key with or without 0x prefix. It
// returns nil for malformed input.
func FromPrivateKey(priv string, opts Options) *KeyPair {
	raw, err := hex.DecodeString(strings.TrimPrefix(priv, "0x"))
	if err != nil {
		return nil
	}
	return FromPrivateKeyBytes(raw, opts)
}

// FromPrivateKeyBytes builds a key pair from a raw 32 byte private key. It returns nil for
// malformed input.
func FromPrivateKeyBytes(raw []byte, opts Options) *KeyPair {
	params := Params(opts.Network)
	if params == nil || len(raw) != btcec.PrivKeyBytesLen {
		return nil
	}
	if d := new(big.Int).SetBytes(raw); d.Sign() == 0 || d.Cmp(btcec.S256().N) >= 0 {
		return nil
	}
	key, _ := btcec.PrivKeyFromBytes(raw)
	return newKeyPair(key, opts.Compressed, params)
}

// FromWIF builds a key pair from a Wallet Import Format string. The compression flag comes
// from the WIF itself. It returns nil for malformed input or a WIF of another network.
func FromWIF(wif string, opts Options) *KeyPair {
	params := Params(opts.Network)
	if params == nil {
		return nil
	}
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil || !decoded.IsForNet(params) {
		return nil
	}
	return newKeyPair(decoded.PrivKey, decoded.CompressPubKey, params)
}

// ParsePrivateKey accepts either a WIF or a hex private key.
func ParsePrivateKey(priv string, opts Options) *KeyPair {
	if kp := FromWIF(priv, opts); kp != nil {
		return kp
	}
	return FromPrivateKey(priv, opts)
}

func newKeyPair(key *btcec.PrivateKey, compressed bool, params *chaincfg.Params) *KeyPair {
	pub := key.PubKey().SerializeUncompressed()
	if compressed {
		pub = key.PubKey().SerializeCompressed()
	}
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pub), params)
	if err != nil {
		return nil
	}
	return &KeyPair{
		PrivateKey: hex.EncodeToString(key.Serialize()),
		PublicKey:  hex.EncodeToString(pub),
		Address:    addr.EncodeAddress(),
		Compressed: compressed,
		key:        key,
		params:     params,
	}
}

// Sign signs a 32 byte hash and returns the DER encoded signature.
func (kp *KeyPair) Sign(hash []byte) []byte {
	return ecdsa.Sign(kp.key, hash).Serialize()
}

// WIF returns the key in Wallet Import Format.
func (kp *KeyPair) WIF() string {
	wif, err := btcutil.NewWIF(kp.key, kp.params, kp.Compressed)
	if err != nil {
		return ""
	}
	return wif.String()
}

// Key returns the underlying private key.
func (kp *KeyPair) Key() *btcec.PrivateKey {
	return kp.key
}

// Params returns the network of the key pair.
func (kp *KeyPair) Params() *chaincfg.Params {
	return kp.params
}
