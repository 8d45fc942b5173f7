// ABOUTME: Logout command for the smartwallet CLI
// ABOUTME: Clears local session state and best-effort invalidates the server session

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of SmartWalletFX",
	Long: `Sign out and remove the locally stored session.

Local state is cleared even when the backend cannot be reached; the server
session is invalidated on a best-effort basis.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogout(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the session and returns an exit code
func runLogout(ctx context.Context, w io.Writer) int {
	store, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	store.Logout(ctx)
	fmt.Fprintln(w, "Signed out.")
	return 0
}
