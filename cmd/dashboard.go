// ABOUTME: Dashboard command for the smartwallet CLI
// ABOUTME: Launches the interactive TUI for the signed-in user

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/tui/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long: `Open the interactive terminal dashboard.

Requires a signed-in session. If the session expires while the dashboard is
open it exits with a sign-in hint.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runDashboard(ctx)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard restores the session and runs the TUI, returning an exit code
func runDashboard(ctx context.Context) int {
	store, client, err := newSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if !store.Restore(ctx) {
		fmt.Fprintln(os.Stderr, "Not signed in. Run 'smartwallet login'.")
		return 1
	}

	if err := dashboard.Run(client, *store.User()); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			fmt.Fprintln(os.Stderr, "Session expired. Run 'smartwallet login' to sign in again.")
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}
