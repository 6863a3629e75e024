package cmd

import (
	"fmt"

	"github.com/chinmay1088/walletsdk/crypto"
	"github.com/chinmay1088/walletsdk/wallet"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new recovery phrase",
	Long: `Create a new 12-word recovery phrase and store it in a password sealed vault.

ETH and BTC accounts are derived from the phrase on demand (BIP-44).

Examples:
  walletsdk init                # Store under the name "default"
  walletsdk init --key backup   # Store under another name`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&keyNameFlag, "key", "k", defaultKeyName, "name to store the phrase under")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	store, err := keyStore()
	if err != nil {
		return err
	}
	if store.Exists(keyNameFlag) {
		return fmt.Errorf("key %s already exists. Delete it with 'walletsdk keys delete %s' first", keyNameFlag, keyNameFlag)
	}

	fmt.Println("🚀 Creating a new recovery phrase")
	fmt.Println()

	password, err := readNewPassword()
	if err != nil {
		return err
	}

	mnemonic, err := wallet.NewMnemonic()
	if err != nil {
		return err
	}
	if err := store.Save(keyNameFlag, crypto.VaultData{Kind: crypto.KindMnemonic, Secret: mnemonic}, password); err != nil {
		return fmt.Errorf("failed to store recovery phrase: %w", err)
	}

	fmt.Println("✅ Key created successfully!")
	fmt.Println()
	fmt.Println("🔐 Recovery Phrase (12 words):")
	fmt.Println()
	fmt.Printf("   %s\n", mnemonic)
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT:")
	fmt.Println("   - Write down this recovery phrase and store it securely")
	fmt.Println("   - Anyone with this phrase can access your funds")
	fmt.Println("   - Keep it offline and never share it with anyone")
	fmt.Println()
	fmt.Println("🔑 Next steps:")
	fmt.Println("   - Run 'walletsdk address eth' to see your addresses")
	fmt.Println("   - Run 'walletsdk balance eth <address>' to check your balances")

	return nil
}
