package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var shortFlag bool

var addressCmd = &cobra.Command{
	Use:   "address [coin]",
	Short: "Show the address of a stored key",
	Long: `Show the address of a stored key on the coin's current network.

Examples:
  walletsdk address eth              # Address of the default key
  walletsdk address btc --index 2    # Third BTC account of the recovery phrase
  walletsdk address eth --short      # One line display form`,
	Args: cobra.ExactArgs(1),
	RunE: runAddress,
}

var sameCmd = &cobra.Command{
	Use:   "same [coin] [address1] [address2]",
	Short: "Check whether two strings denote the same address",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		same, err := client.SameAddress(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if same {
			fmt.Println(color.GreenString("✅ Same address"))
		} else {
			fmt.Println(color.RedString("❌ Different addresses"))
		}
		return nil
	},
}

func init() {
	addKeyFlags(addressCmd)
	addressCmd.Flags().BoolVarP(&shortFlag, "short", "s", false, "print the one line display form")
	rootCmd.AddCommand(addressCmd, sameCmd)
}

func runAddress(cmd *cobra.Command, args []string) error {
	coin := strings.ToUpper(args[0])
	account, err := loadAccount(keyNameFlag, coin)
	if err != nil {
		return err
	}
	network, err := client.Network(coin)
	if err != nil {
		return err
	}

	address := account.Address
	if shortFlag {
		if address, err = client.FormatAddress1Line(coin, address); err != nil {
			return err
		}
	}

	fmt.Printf("🔑 %s address (%s):\n", coin, color.CyanString(network))
	fmt.Printf("   📍 %s\n", address)
	return nil
}
