package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chinmay1088/walletsdk/crypto"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/chinmay1088/walletsdk/wallet"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultKeyName = "default"

var (
	keyNameFlag  string
	keyIndexFlag uint32
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List or delete stored keys",
	Long: `List the password sealed keys stored under ~/.walletsdk/keys, or delete one.

Examples:
  walletsdk keys                 # List stored keys
  walletsdk keys delete backup   # Delete the key named backup`,
	Args: cobra.NoArgs,
	RunE: runKeysList,
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a stored key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysDelete,
}

func init() {
	keysCmd.AddCommand(keysDeleteCmd)
	rootCmd.AddCommand(keysCmd)
}

func keyStore() (*wallet.Store, error) {
	dir, err := wallet.DefaultDir()
	if err != nil {
		return nil, err
	}
	return wallet.NewStore(dir), nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	store, err := keyStore()
	if err != nil {
		return err
	}
	names, err := store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No keys stored. Run 'walletsdk init' or 'walletsdk import' first")
		return nil
	}

	fmt.Println("🔑 Stored keys:")
	for _, name := range names {
		fmt.Printf("   - %s\n", color.CyanString(name))
	}
	return nil
}

func runKeysDelete(cmd *cobra.Command, args []string) error {
	store, err := keyStore()
	if err != nil {
		return err
	}
	if !confirm(fmt.Sprintf("🚨 Delete key %s? Funds are lost unless you hold a backup.", args[0])) {
		fmt.Println("❌ Cancelled")
		return nil
	}
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("✅ Deleted %s\n", args[0])
	return nil
}

// readPassword prompts for a password without echo.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// readNewPassword prompts twice and enforces a minimum length.
func readNewPassword() (string, error) {
	password, err := readPassword("Enter a password for the key: ")
	if err != nil {
		return "", err
	}
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters long")
	}
	again, err := readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if again != password {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

func readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func confirm(message string) bool {
	fmt.Println()
	fmt.Println(message)
	fmt.Printf("Press y to confirm or n to stop (y/n): ")

	var response string
	fmt.Scanln(&response)

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// loadAccount opens the named key and returns the signing account of coin on its current
// network. Mnemonic keys derive the account at keyIndexFlag.
func loadAccount(name, coin string) (types.Account, error) {
	store, err := keyStore()
	if err != nil {
		return types.Account{}, err
	}
	if !store.Exists(name) {
		return types.Account{}, fmt.Errorf("no key named %s. Run 'walletsdk init' first", name)
	}
	password, err := readPassword(fmt.Sprintf("Enter the password of %s: ", name))
	if err != nil {
		return types.Account{}, err
	}
	data, err := store.Load(name, password)
	if err != nil {
		return types.Account{}, err
	}

	symbol := strings.ToUpper(coin)
	switch data.Kind {
	case crypto.KindMnemonic:
		network, err := client.Network(symbol)
		if err != nil {
			return types.Account{}, err
		}
		seed, err := wallet.Seed(data.Secret, "")
		if err != nil {
			return types.Account{}, err
		}
		return wallet.DeriveAccount(seed, symbol, keyIndexFlag, network)
	case crypto.KindPrivateKey:
		if data.Symbol != symbol {
			return types.Account{}, fmt.Errorf("key %s holds a %s key, not %s", name, data.Symbol, symbol)
		}
		return types.Account{Symbol: symbol, Address: data.Address, PrivateKey: data.Secret}, nil
	default:
		return types.Account{}, fmt.Errorf("key %s has unknown kind %q", name, data.Kind)
	}
}

func addKeyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&keyNameFlag, "key", "k", defaultKeyName, "name of the stored key")
	cmd.Flags().Uint32Var(&keyIndexFlag, "index", 0, "account index derived from a recovery phrase")
}
