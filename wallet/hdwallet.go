// Package wallet derives per-coin accounts from a BIP-39 mnemonic and keeps encrypted keys
// on disk.
package wallet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/chinmay1088/walletsdk/coins/btc"
	"github.com/chinmay1088/walletsdk/config"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// Derivation paths, the last element is the address index.
const (
	EthDerivationPath        = "m/44'/60'/0'/0/%d"
	BtcDerivationPath        = "m/44'/0'/0'/0/%d"
	BtcTestnetDerivationPath = "m/44'/1'/0'/0/%d" // coin type 1 for testnet
)

var (
	// ErrInvalidMnemonic is returned for a mnemonic that fails the BIP-39 checksum.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrUnsupportedCoin is returned for coins without secp256k1 derivation.
	ErrUnsupportedCoin = errors.New("derivation not supported for coin")
)

// NewMnemonic generates a 12 word mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// Seed validates mnemonic and returns its BIP-39 seed.
func Seed(mnemonic, passphrase string) ([]byte, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMnemonic, err)
	}
	return seed, nil
}

// DeriveKey derives the private key at a BIP-32 path such as m/44'/0'/0'/0/0.
func DeriveKey(seed []byte, path string) (*btcec.PrivateKey, error) {
	// relative paths would be appended to the ethereum default root
	if !strings.HasPrefix(strings.TrimSpace(path), "m/") {
		return nil, fmt.Errorf("invalid derivation path %q: must start with m/", path)
	}
	indexes, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
	}

	// the network only affects serialization of extended keys, not derivation
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	for _, index := range indexes {
		if key, err = key.Derive(index); err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", index, err)
		}
	}

	privateKey, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}
	return privateKey, nil
}

// DeriveAccount derives the account at index for symbol. Bitcoin accounts use compressed
// P2PKH addresses and carry the key as WIF.
func DeriveAccount(seed []byte, symbol string, index uint32, network string) (types.Account, error) {
	symbol = strings.ToUpper(symbol)
	switch symbol {
	case "ETH":
		key, err := DeriveKey(seed, fmt.Sprintf(EthDerivationPath, index))
		if err != nil {
			return types.Account{}, err
		}
		return types.Account{
			Symbol:     symbol,
			Address:    ethcrypto.PubkeyToAddress(*key.PubKey().ToECDSA()).Hex(),
			PrivateKey: hexutil.Encode(key.Serialize()),
		}, nil

	case "BTC":
		path := BtcDerivationPath
		if network == config.NetworkTestnet {
			path = BtcTestnetDerivationPath
		}
		key, err := DeriveKey(seed, fmt.Sprintf(path, index))
		if err != nil {
			return types.Account{}, err
		}
		kp := btc.FromPrivateKeyBytes(key.Serialize(), btc.Options{Network: network, Compressed: true})
		if kp == nil {
			return types.Account{}, fmt.Errorf("unknown bitcoin network %q", network)
		}
		return types.Account{Symbol: symbol, Address: kp.Address, PrivateKey: kp.WIF()}, nil

	default:
		return types.Account{}, fmt.Errorf("%w: %s", ErrUnsupportedCoin, symbol)
	}
}
