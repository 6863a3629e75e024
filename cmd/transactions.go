package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chinmay1088/walletsdk/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	pageFlag int
	sizeFlag int
)

var transactionsCmd = &cobra.Command{
	Use:     "txs [coin] [address]",
	Aliases: []string{"transactions"},
	Short:   "Show transaction history with pagination",
	Long: `Show one page of the transaction history of an address, newest first.

Examples:
  walletsdk txs eth 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  walletsdk txs aion 0xa0c2... --page 1 --size 10`,
	Args: cobra.ExactArgs(2),
	RunE: runTransactions,
}

var statusCmd = &cobra.Command{
	Use:   "status [coin] [hash]",
	Short: "Show the status of a transaction",
	Args:  cobra.ExactArgs(2),
	RunE:  runStatus,
}

var blockCmd = &cobra.Command{
	Use:   "block [coin] [number]",
	Short: "Show the latest block number, or one block",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runBlock,
}

func init() {
	transactionsCmd.Flags().IntVarP(&pageFlag, "page", "p", 0, "page number, starting at 0")
	transactionsCmd.Flags().IntVarP(&sizeFlag, "size", "l", 5, "transactions per page")
	rootCmd.AddCommand(transactionsCmd, statusCmd, blockCmd)
}

func runTransactions(cmd *cobra.Command, args []string) error {
	coin := strings.ToUpper(args[0])
	txs, err := client.GetTransactionsByAddress(cmd.Context(), coin, args[1], pageFlag, sizeFlag)
	if err != nil {
		return fmt.Errorf("failed to fetch transactions: %w", err)
	}

	fmt.Printf("📜 %s transactions of %s (page %d)\n", coin, args[1], pageFlag)
	fmt.Println()
	printTransactions(coin, args[1], txs)
	return nil
}

func printTransactions(coin, owner string, txs types.Transactions) {
	if len(txs) == 0 {
		fmt.Println("   No transactions found")
		return
	}

	list := make([]types.Transaction, 0, len(txs))
	for _, tx := range txs {
		list = append(list, tx)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Timestamp > list[j].Timestamp })

	for _, tx := range list {
		direction := color.GreenString("⬇ IN ")
		counterparty := tx.From
		if same, _ := client.SameAddress(coin, tx.From, owner); same {
			direction = color.RedString("⬆ OUT")
			counterparty = tx.To
		}
		short, _ := client.FormatAddress1Line(coin, counterparty)

		fmt.Printf("%s %s %s  %s\n", direction, tx.Value.String(), coin, statusColor(tx.Status))
		fmt.Printf("   🕒 %s  ↔ %s\n", time.UnixMilli(tx.Timestamp).Format("2006-01-02 15:04:05"), short)
		if link, err := client.GetTransactionExplorerURL(coin, tx.Hash); err == nil {
			fmt.Printf("   🔗 %s\n", link)
		} else {
			fmt.Printf("   🔗 %s\n", tx.Hash)
		}
	}
}

func statusColor(status string) string {
	switch status {
	case types.StatusConfirmed:
		return color.GreenString(status)
	case types.StatusFailed:
		return color.RedString(status)
	default:
		return color.YellowString(status)
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := client.GetTransactionStatus(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Status: %s\n", statusColor(status.Status))
	if status.BlockNumber > 0 {
		fmt.Printf("Block:  %d\n", status.BlockNumber)
	}
	if status.GasUsed > 0 {
		fmt.Printf("Gas:    %d\n", status.GasUsed)
	}
	return nil
}

func runBlock(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		number, err := client.GetBlockNumber(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(number)
		return nil
	}

	number, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block number: %s", args[1])
	}
	block, err := client.GetBlockByNumber(cmd.Context(), args[0], number)
	if err != nil {
		return err
	}
	return printJSON(block)
}
