package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chinmay1088/walletsdk/api"
	"github.com/chinmay1088/walletsdk/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	version = "0.3.0"

	coinsFlag   []string
	testnetFlag bool
	configFlag  string
	remoteFlag  string
	networkFlag []string
	debugFlag   bool

	client *api.Client
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "walletsdk",
	Short: "Multi-chain wallet client for AION, Ethereum and Bitcoin",
	Long: `walletsdk queries balances, histories and tokens of AION, Ethereum and Bitcoin
accounts and signs transfers locally. Keys never leave the machine; they are kept in
password sealed vaults under ~/.walletsdk/keys.

Configuration:
  Endpoints default to public nodes and explorers. Override any of them with a YAML
  file (--config), e.g.

    eth:
      networks:
        mainnet:
          jsonrpc: https://mainnet.infura.io/v3/${INFURA_KEY}

  Variables from .env in the working directory are loaded before the file is read.

Examples:
  walletsdk init                              # Create a recovery phrase and keys
  walletsdk address eth                       # Show the stored ETH address
  walletsdk balance eth 0x742d35Cc...         # Check a balance
  walletsdk txs btc 1A1zP1eP... --size 10     # Transaction history
  walletsdk token detail aion 0xa02e...       # Token metadata
  walletsdk send eth 0x742d35Cc... 0.1        # Sign and broadcast a transfer
  walletsdk --testnet balance aion 0xa0...    # Use the coin's test network`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&coinsFlag, "coins", api.Supported(), "coins to enable")
	rootCmd.PersistentFlags().BoolVarP(&testnetFlag, "testnet", "t", false, "use the test network of every coin")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "YAML file with endpoint overrides")
	rootCmd.PersistentFlags().StringVar(&remoteFlag, "remote", "prod", "remote backend (qa, staging, prod)")
	rootCmd.PersistentFlags().StringSliceVar(&networkFlag, "network", nil, "per coin network, e.g. eth=pokket")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "debug logging")

	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if debugFlag {
		level = slog.LevelDebug
	}
	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	if err := config.LoadEnv(".env"); err != nil {
		return err
	}

	opts := []api.Option{api.WithLogger(logger), api.WithRemote(remoteFlag)}
	if configFlag != "" {
		override, err := config.Load(configFlag)
		if err != nil {
			return err
		}
		opts = append(opts, api.WithConfig(override))
	}

	c, err := api.NewClient(coinsFlag, testnetFlag, opts...)
	if err != nil {
		return err
	}

	for _, pair := range networkFlag {
		coin, network, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid --network value %q, want coin=network", pair)
		}
		if err := c.SetCoinNetwork(coin, network); err != nil {
			return err
		}
	}

	client = c
	return nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("walletsdk v%s\n", version)
	},
}
