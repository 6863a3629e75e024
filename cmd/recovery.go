package cmd

import (
	"fmt"
	"strings"

	"github.com/chinmay1088/walletsdk/coins/btc"
	"github.com/chinmay1088/walletsdk/coins/eth"
	"github.com/chinmay1088/walletsdk/crypto"
	"github.com/chinmay1088/walletsdk/wallet"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"
)

var importCmd = &cobra.Command{
	Use:   "import [phrase|eth|btc]",
	Short: "Import a recovery phrase or a private key",
	Long: `Import an existing recovery phrase, or a single private key of one coin, into a
password sealed vault.

Examples:
  walletsdk import phrase --key restored   # Prompt for a 12 or 24 word phrase
  walletsdk import eth --key hot           # Prompt for a hex private key
  walletsdk import btc --key cold          # Prompt for a WIF or hex private key`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"phrase", "eth", "btc"},
	RunE:      runImport,
}

func init() {
	importCmd.Flags().StringVarP(&keyNameFlag, "key", "k", defaultKeyName, "name to store the key under")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	store, err := keyStore()
	if err != nil {
		return err
	}
	if store.Exists(keyNameFlag) {
		return fmt.Errorf("key %s already exists", keyNameFlag)
	}

	var data crypto.VaultData
	switch kind := strings.ToLower(args[0]); kind {
	case "phrase", "mnemonic":
		phrase, err := readLine("Enter your recovery phrase: ")
		if err != nil {
			return err
		}
		phrase = strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
		if !bip39.IsMnemonicValid(phrase) {
			return wallet.ErrInvalidMnemonic
		}
		data = crypto.VaultData{Kind: crypto.KindMnemonic, Secret: phrase}

	case "eth":
		secret, err := readPassword("Enter the private key (hex): ")
		if err != nil {
			return err
		}
		key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(secret), "0x"))
		if err != nil {
			return fmt.Errorf("invalid private key: %w", err)
		}
		data = crypto.VaultData{
			Kind:    crypto.KindPrivateKey,
			Symbol:  eth.Symbol,
			Address: ethcrypto.PubkeyToAddress(key.PublicKey).Hex(),
			Secret:  "0x" + strings.TrimPrefix(strings.TrimSpace(secret), "0x"),
		}

	case "btc":
		secret, err := readPassword("Enter the private key (WIF or hex): ")
		if err != nil {
			return err
		}
		network, err := client.Network(btc.Symbol)
		if err != nil {
			return err
		}
		kp := btc.ParsePrivateKey(strings.TrimSpace(secret), btc.Options{Network: network, Compressed: true})
		if kp == nil {
			return fmt.Errorf("invalid private key for bitcoin %s", network)
		}
		data = crypto.VaultData{Kind: crypto.KindPrivateKey, Symbol: btc.Symbol, Address: kp.Address, Secret: kp.WIF()}

	default:
		return fmt.Errorf("unsupported import kind: %s. Use phrase, eth or btc", kind)
	}

	password, err := readNewPassword()
	if err != nil {
		return err
	}
	if err := store.Save(keyNameFlag, data, password); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	fmt.Printf("✅ Imported as %s\n", keyNameFlag)
	if data.Address != "" {
		fmt.Printf("   📍 Address: %s\n", data.Address)
	}
	return nil
}
