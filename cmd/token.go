package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chinmay1088/walletsdk/coins"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	tokenNetworkFlag string
	tokenPageFlag    int
	tokenSizeFlag    int
	topFlag          int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Query tokens of AION and Ethereum",
	Long: `Query token contracts, account token holdings and the token lists of the remote backend.

Examples:
  walletsdk token detail eth 0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2
  walletsdk token balance aion 0xa02e... 0xa0c2...
  walletsdk token list eth 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  walletsdk token history eth 0x742d... 0x9f8f... --page 0 --size 25
  walletsdk token top aion --top 20
  walletsdk token search eth maker`,
}

var tokenDetailCmd = &cobra.Command{
	Use:   "detail [coin] [contract]",
	Short: "Read symbol, name and decimals of a token contract",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		detail, err := client.FetchTokenDetail(cmd.Context(), args[0], args[1], tokenNetworkFlag)
		if err != nil {
			return err
		}
		fmt.Printf("🪙 %s (%s)\n", color.CyanString(detail.Symbol), detail.Name)
		fmt.Printf("   Decimals: %d\n", detail.Decimals)
		fmt.Printf("   Contract: %s\n", detail.ContractAddr)
		if icon, err := client.GetTokenIconURL(args[0], detail.Symbol, detail.ContractAddr); err == nil {
			fmt.Printf("   Icon:     %s\n", icon)
		}
		return nil
	},
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance [coin] [contract] [address]",
	Short: "Show the token balance of an address",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		raw, err := client.FetchAccountTokenBalance(ctx, args[0], args[1], args[2], tokenNetworkFlag)
		if err != nil {
			return err
		}
		detail, err := client.FetchTokenDetail(ctx, args[0], args[1], tokenNetworkFlag)
		if err != nil {
			fmt.Printf("%s (raw units)\n", raw.String())
			return nil
		}
		fmt.Printf("%s %s\n", coins.FromUnits(raw, int(detail.Decimals)).String(), detail.Symbol)
		return nil
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list [coin] [address]",
	Short: "List the tokens held by an address with their balances",
	Args:  cobra.ExactArgs(2),
	RunE:  runTokenList,
}

var tokenHistoryCmd = &cobra.Command{
	Use:   "history [coin] [address] [contract]",
	Short: "Show token transfers of an address",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		coin := strings.ToUpper(args[0])
		txs, err := client.FetchAccountTokenTransferHistory(cmd.Context(), coin, args[1], args[2], tokenNetworkFlag, tokenPageFlag, tokenSizeFlag)
		if err != nil {
			return err
		}
		fmt.Printf("📜 Token transfers of %s (page %d)\n", args[1], tokenPageFlag)
		fmt.Println()
		printTransactions(coin, args[1], txs)
		return nil
	},
}

var tokenTopCmd = &cobra.Command{
	Use:   "top [coin]",
	Short: "Show the most popular tokens of a coin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := client.GetTopTokens(cmd.Context(), args[0], topFlag)
		if err != nil {
			return err
		}
		return printJSON(tokens)
	},
}

var tokenSearchCmd = &cobra.Command{
	Use:   "search [coin] [keyword]",
	Short: "Search the token list of a coin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := client.SearchTokens(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printJSON(tokens)
	},
}

func init() {
	tokenCmd.PersistentFlags().StringVar(&tokenNetworkFlag, "token-network", "", "network to query instead of the coin's current one")
	tokenHistoryCmd.Flags().IntVarP(&tokenPageFlag, "page", "p", 0, "page number, starting at 0")
	tokenHistoryCmd.Flags().IntVarP(&tokenSizeFlag, "size", "l", 25, "transfers per page")
	tokenTopCmd.Flags().IntVar(&topFlag, "top", 20, "number of tokens")

	tokenCmd.AddCommand(tokenDetailCmd, tokenBalanceCmd, tokenListCmd, tokenHistoryCmd, tokenTopCmd, tokenSearchCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	coin, address := strings.ToUpper(args[0]), args[1]

	tokens, err := client.FetchAccountTokens(ctx, coin, address, tokenNetworkFlag)
	if err != nil {
		return fmt.Errorf("failed to fetch tokens: %w", err)
	}
	if len(tokens) == 0 {
		fmt.Println("No tokens found")
		return nil
	}

	bar := progressbar.NewOptions(len(tokens),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Fetching balances...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:     "[green]=[reset]",
			SaucerHead: "[green]>[reset]",
			BarStart:   "[",
			BarEnd:     "]",
		}),
	)

	symbols := make([]string, 0, len(tokens))
	for symbol, token := range tokens {
		balance, err := client.FetchAccountTokenBalance(ctx, coin, token.ContractAddr, address, tokenNetworkFlag)
		if err != nil {
			logger.Warn("failed to fetch token balance", "token", symbol, "err", err)
		} else {
			token.Balance = balance
			tokens[symbol] = token
		}
		symbols = append(symbols, symbol)
		bar.Add(1)
	}
	bar.Finish()
	fmt.Println()
	fmt.Println()

	sort.Strings(symbols)
	fmt.Printf("🪙 Tokens of %s\n", address)
	for _, symbol := range symbols {
		token := tokens[symbol]
		fmt.Printf("   %-8s %s\n", color.CyanString(symbol), coins.FromUnits(token.Balance, token.TokenDecimal).String())
		fmt.Printf("            %s  %s\n", token.Name, token.ContractAddr)
	}
	return nil
}
