package cmd

import (
	"fmt"
	"strings"

	"github.com/chinmay1088/walletsdk/coins"
	"github.com/chinmay1088/walletsdk/config"
	"github.com/chinmay1088/walletsdk/types"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	contractFlag string
	gasPriceFlag string
	gasLimitFlag uint64
	feeRateFlag  int64
	dryRunFlag   bool
	yesFlag      bool
)

var payCmd = &cobra.Command{
	Use:     "send [coin] [address] [amount]",
	Aliases: []string{"pay"},
	Short:   "Send coins or tokens",
	Long: `Sign a transfer with a stored key and broadcast it.

Amounts are in whole units of the coin or token. Gas prices are in gwei.

Examples:
  walletsdk send eth 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6 0.1
  walletsdk send eth 0x742d... 25 --contract 0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2
  walletsdk send btc 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa 0.001 --fee-rate 20
  walletsdk send eth 0x742d... 0.1 --dry-run     # Print the signed transaction only`,
	Args: cobra.ExactArgs(3),
	RunE: runPay,
}

func init() {
	addKeyFlags(payCmd)
	payCmd.Flags().StringVar(&contractFlag, "contract", "", "token contract; sends the token instead of the coin")
	payCmd.Flags().StringVar(&gasPriceFlag, "gas-price", "", "gas price in gwei (default: ask the node)")
	payCmd.Flags().Uint64Var(&gasLimitFlag, "gas-limit", 0, "gas limit (default: estimate)")
	payCmd.Flags().Int64Var(&feeRateFlag, "fee-rate", 0, "bitcoin fee rate in satoshi per byte")
	payCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "sign without broadcasting")
	payCmd.Flags().BoolVarP(&yesFlag, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(payCmd)
}

func runPay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	coin, to := strings.ToUpper(args[0]), args[1]

	amount, err := decimal.NewFromString(args[2])
	if err != nil || !amount.IsPositive() {
		return fmt.Errorf("invalid amount: %s", args[2])
	}

	extra := types.ExtraParams{GasLimit: gasLimitFlag, FeeRate: feeRateFlag}
	if gasPriceFlag != "" {
		gwei, err := decimal.NewFromString(gasPriceFlag)
		if err != nil {
			return fmt.Errorf("invalid gas price: %s", gasPriceFlag)
		}
		extra.GasPrice = coins.ToUnits(gwei, 9)
	}

	symbol := coin
	if contractFlag != "" {
		detail, err := client.FetchTokenDetail(ctx, coin, contractFlag, "")
		if err != nil {
			return fmt.Errorf("failed to read token contract: %w", err)
		}
		symbol = detail.Symbol
		extra.ContractAddress = contractFlag
		extra.TokenDecimals = int(detail.Decimals)
	}

	account, err := loadAccount(keyNameFlag, coin)
	if err != nil {
		return err
	}

	sufficient, err := client.ValidateBalanceSufficiency(ctx, account, symbol, amount, extra)
	if err != nil {
		return fmt.Errorf("failed to check balance: %w", err)
	}
	if !sufficient.Result {
		return fmt.Errorf("insufficient balance: %s", sufficient.Err)
	}

	network, _ := client.Network(coin)
	fmt.Printf("💸 Sending %s %s\n", amount.String(), color.CyanString(symbol))
	fmt.Printf("   From: %s\n", account.Address)
	fmt.Printf("   To:   %s\n", to)

	if !dryRunFlag && !yesFlag {
		message := "🚨 You are on main network. By confirming this transaction real funds will be sent to this address."
		if network != config.NetworkMainnet {
			message = fmt.Sprintf("⚠️ You are on %s. By confirming this transaction no real funds will be sent.", network)
		}
		if !confirm(message) {
			fmt.Println("❌ Transaction cancelled by user")
			return nil
		}
	}

	res, err := client.SendTransaction(ctx, account, symbol, to, amount, extra, nil, !dryRunFlag)
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}

	if !res.Broadcasted {
		fmt.Println("✍️  Signed, not broadcast")
		fmt.Printf("   Hash: %s\n", res.Hash)
		fmt.Printf("   Raw:  %s\n", res.RawTx)
		return nil
	}

	fmt.Println("✅ Transaction sent!")
	fmt.Printf("📋 Hash: %s\n", res.Hash)
	if link, err := client.GetTransactionExplorerURL(coin, res.Hash); err == nil {
		fmt.Printf("🔗 Explorer: %s\n", link)
	}
	return nil
}
