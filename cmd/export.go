package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chinmay1088/walletsdk/types"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	exportPagesFlag int
	exportSizeFlag  int
	exportDirFlag   string
)

var exportCmd = &cobra.Command{
	Use:   "export [coin] [address]",
	Short: "Export transaction history to JSON and CSV",
	Long: `Export the transaction history of an address to JSON and CSV files, one page at a time.

Examples:
  walletsdk export eth 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6
  walletsdk export btc 1A1zP1eP... --pages 5 --size 20 --dir ./exports`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportPagesFlag, "pages", 3, "number of pages to fetch")
	exportCmd.Flags().IntVar(&exportSizeFlag, "size", 25, "transactions per page")
	exportCmd.Flags().StringVar(&exportDirFlag, "dir", ".", "output directory")
	rootCmd.AddCommand(exportCmd)
}

// export structure
type ExportData struct {
	ExportDate   string              `json:"export_date"`
	Coin         string              `json:"coin"`
	Network      string              `json:"network"`
	Address      string              `json:"address"`
	Transactions []types.Transaction `json:"transactions"`
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	coin, address := strings.ToUpper(args[0]), args[1]
	network, err := client.Network(coin)
	if err != nil {
		return err
	}

	fmt.Printf("📊 Exporting %s history of %s (%s)\n", coin, address, network)
	bar := progressbar.NewOptions(exportPagesFlag+1,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription("[cyan][1/2][reset] Collecting pages..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:     "[green]=[reset]",
			SaucerHead: "[green]>[reset]",
			BarStart:   "[",
			BarEnd:     "]",
		}),
	)

	all := make(types.Transactions)
	for page := 0; page < exportPagesFlag; page++ {
		txs, err := client.GetTransactionsByAddress(ctx, coin, address, page, exportSizeFlag)
		if err != nil {
			return fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		for hash, tx := range txs {
			all[hash] = tx
		}
		bar.Add(1)
		if len(txs) < exportSizeFlag {
			bar.Set(exportPagesFlag)
			break
		}
	}

	data := &ExportData{
		ExportDate: time.Now().Format("2006-01-02 15:04:05"),
		Coin:       coin,
		Network:    network,
		Address:    address,
	}
	for _, tx := range all {
		data.Transactions = append(data.Transactions, tx)
	}
	sort.Slice(data.Transactions, func(i, j int) bool {
		return data.Transactions[i].Timestamp > data.Transactions[j].Timestamp
	})

	bar.Describe("[cyan][2/2][reset] Writing export files...")
	base := filepath.Join(exportDirFlag, fmt.Sprintf("%s_%s_%s", strings.ToLower(coin), network, time.Now().Format("20060102_150405")))
	if err := writeExportFiles(data, base); err != nil {
		return err
	}
	bar.Finish()
	fmt.Println()

	fmt.Println("📁 Export completed successfully!")
	fmt.Printf("📍 Files: %s.json, %s.csv\n", base, base)
	fmt.Printf("   Transactions: %d\n", len(data.Transactions))
	return nil
}

func writeExportFiles(data *ExportData, base string) error {
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := os.WriteFile(base+".json", raw, 0644); err != nil {
		return fmt.Errorf("failed to write JSON export: %w", err)
	}

	f, err := os.Create(base + ".csv")
	if err != nil {
		return fmt.Errorf("failed to create CSV export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"Hash", "Timestamp", "From", "To", "Value", "Fee", "Status", "Block"})
	for _, tx := range data.Transactions {
		w.Write([]string{
			tx.Hash,
			time.UnixMilli(tx.Timestamp).UTC().Format(time.RFC3339),
			tx.From,
			tx.To,
			tx.Value.String(),
			tx.Fee.String(),
			tx.Status,
			strconv.FormatUint(tx.BlockNumber, 10),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV export: %w", err)
	}
	return nil
}
