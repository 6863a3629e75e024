package cmd

import (
	"fmt"
	"strings"

	"github.com/chinmay1088/walletsdk/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show the network and endpoints of each coin",
	Long: `Show the current network of every enabled coin, the endpoints it resolves to and the
operations the coin supports. Use --testnet, --network coin=name or --config to change them.

Examples:
  walletsdk network
  walletsdk --testnet network
  walletsdk --network eth=pokket network`,
	Args: cobra.NoArgs,
	RunE: runNetwork,
}

func init() {
	rootCmd.AddCommand(networkCmd)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	settings := client.Settings()

	fmt.Printf("🛰  Remote backend: %s\n", color.CyanString(remoteFlag))
	fmt.Println()

	for _, coin := range client.Coins() {
		current, err := client.Network(coin)
		if err != nil {
			return err
		}

		label := color.GreenString(current)
		if current != config.NetworkMainnet {
			label = color.YellowString(current)
		}
		fmt.Printf("🌐 %s: %s (available: %s)\n", coin, label, strings.Join(settings.Networks(coin), ", "))

		n, err := settings.Network(coin, current)
		if err != nil {
			fmt.Printf("   %s\n", color.RedString(err.Error()))
			continue
		}
		if n.JSONRPC != "" {
			fmt.Printf("   JSON-RPC:     %s\n", n.JSONRPC)
		}
		fmt.Printf("   Explorer API: %s (%s)\n", n.ExplorerAPI.URL, n.ExplorerAPI.Provider)
		fmt.Printf("   Explorer:     %s\n", n.Explorer.URL)

		caps, _ := client.Capabilities(coin)
		names := make([]string, len(caps))
		for i, c := range caps {
			names[i] = string(c)
		}
		fmt.Printf("   Operations:   %s\n", strings.Join(names, ", "))
		fmt.Println()
	}
	return nil
}
