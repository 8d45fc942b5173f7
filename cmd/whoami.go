// ABOUTME: Whoami command for the smartwallet CLI
// ABOUTME: Restores the stored session and prints the signed-in identity

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
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Long: `Show who is currently signed in.

Restores the stored session first, refreshing expired credentials silently
when possible.

Exit codes:
  0 - Signed in
  1 - Not signed in (or the session could not be restored)
  2 - Error (configuration)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runWhoami(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// runWhoami restores the session and returns an exit code
func runWhoami(ctx context.Context, w io.Writer) int {
	store, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if !store.Restore(ctx) {
		fmt.Fprintln(w, "Not signed in. Run 'smartwallet login'.")
		return 1
	}

	user := store.User()
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(user, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintf(w, "Signed in as %s (%s)\n", user.Username, user.Email)
	if user.DisplayName != "" {
		fmt.Fprintf(w, "  Display name: %s\n", user.DisplayName)
	}
	if user.BaseCurrency != "" {
		fmt.Fprintf(w, "  Base currency: %s\n", user.BaseCurrency)
	}
	if !user.EmailVerified {
		fmt.Fprintln(w, "  Email: not verified")
	}
	return 0
}
