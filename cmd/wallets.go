// ABOUTME: Wallets command for the smartwallet CLI
// ABOUTME: Lists tracked wallets with human-readable and JSON formatters

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
)

var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List your tracked wallets",
	Long: `List the wallets tracked by your account.

Exit codes:
  0 - Wallets listed
  1 - Not signed in
  2 - Error (connectivity, configuration)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWallets(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(walletsCmd)
}

// runWallets fetches and prints the wallet list, returning an exit code
func runWallets(ctx context.Context, w io.Writer) int {
	store, client, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if !store.Restore(ctx) {
		fmt.Fprintln(w, "Not signed in. Run 'smartwallet login'.")
		return 1
	}

	wallets, err := client.Wallets(ctx)
	if err != nil {
		if api.IsStatus(err, 401) {
			fmt.Fprintln(w, "Not signed in. Run 'smartwallet login'.")
			return 1
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatWalletsJSON(wallets))
	} else {
		fmt.Fprintln(w, formatWalletsHuman(wallets))
	}
	return 0
}

// formatWalletsHuman renders the wallet list as an aligned table
func formatWalletsHuman(wallets []api.Wallet) string {
	if len(wallets) == 0 {
		return "No wallets yet. Add one from the web app."
	}

	output := fmt.Sprintf("%-24s %-8s %14s %8s\n", "NAME", "CUR", "BALANCE", "ASSETS")
	var total float64
	for _, w := range wallets {
		output += fmt.Sprintf("%-24s %-8s %14.2f %8d\n", w.Name, w.Currency, w.Balance, w.AssetCount)
		total += w.Balance
	}
	output += fmt.Sprintf("\nTotal across %d wallet(s): %.2f", len(wallets), total)
	return output
}

// formatWalletsJSON renders the wallet list as JSON
func formatWalletsJSON(wallets []api.Wallet) string {
	var total float64
	for _, w := range wallets {
		total += w.Balance
	}

	output := map[string]interface{}{
		"wallets": wallets,
		"count":   len(wallets),
		"total":   total,
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
