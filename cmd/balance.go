package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	fiatFlag      string
	priceFiatFlag string
)

var balanceCmd = &cobra.Command{
	Use:   "balance [coin] [address]",
	Short: "Check the balance of an address",
	Long: `Check the native balance of an address.

Examples:
  walletsdk balance eth 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  walletsdk balance btc 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa --fiat USD`,
	Args: cobra.ExactArgs(2),
	RunE: runBalance,
}

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Show market prices of the enabled coins",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prices, err := client.GetCoinPrices(cmd.Context(), priceFiatFlag)
		if err != nil {
			return err
		}
		return printJSON(prices)
	},
}

func init() {
	balanceCmd.Flags().StringVar(&fiatFlag, "fiat", "", "also show the value in this fiat currency")
	pricesCmd.Flags().StringVar(&priceFiatFlag, "fiat", "USD", "fiat currency")
	rootCmd.AddCommand(balanceCmd, pricesCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	coin := strings.ToUpper(args[0])
	address := args[1]

	balance, err := client.GetBalance(cmd.Context(), coin, address)
	if err != nil {
		return fmt.Errorf("failed to fetch balance: %w", err)
	}
	network, _ := client.Network(coin)

	fmt.Println("💰 Balance")
	fmt.Printf("🌐 Network: %s\n", color.CyanString(network))
	fmt.Println()
	fmt.Printf("   %s %s\n", balance.String(), coin)

	if fiatFlag != "" {
		price, err := coinPrice(cmd, coin, fiatFlag)
		if err != nil {
			fmt.Printf("   💵 %s: Error fetching price - %v\n", fiatFlag, err)
		} else {
			fmt.Printf("   💵 %s: %s\n", strings.ToUpper(fiatFlag), balance.Mul(price).StringFixed(2))
		}
	}

	fmt.Printf("   📍 Address: %s\n", address)
	return nil
}

// coinPrice picks one coin out of the price list of the remote backend. The backend answers
// either {"ETH": {"USD": 1.0}} or a list of {"crypto": "ETH", "price": 1.0} entries.
func coinPrice(cmd *cobra.Command, coin, fiat string) (decimal.Decimal, error) {
	raw, err := client.GetCoinPrices(cmd.Context(), fiat)
	if err != nil {
		return decimal.Zero, err
	}

	var byCoin map[string]map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &byCoin); err == nil {
		if price, ok := byCoin[coin][strings.ToUpper(fiat)]; ok {
			return price, nil
		}
	}

	var list []struct {
		Crypto string          `json:"crypto"`
		Price  decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, p := range list {
			if strings.EqualFold(p.Crypto, coin) {
				return p.Price, nil
			}
		}
	}
	return decimal.Zero, fmt.Errorf("price not found for %s", coin)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
