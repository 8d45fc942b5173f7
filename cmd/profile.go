// ABOUTME: Profile command for the smartwallet CLI
// ABOUTME: Shows or updates the signed-in user's profile settings

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

var (
	profileDisplayName  string
	profileBaseCurrency string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Long: `Show your profile, or update it when --display-name or --base-currency
is given.

Exit codes:
  0 - Profile shown or updated
  1 - Not signed in, or the update was rejected
  2 - Error (connectivity, configuration)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runProfile(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profileDisplayName, "display-name", "", "New display name")
	profileCmd.Flags().StringVar(&profileBaseCurrency, "base-currency", "", "New base currency (e.g. USD, EUR)")
}

// runProfile shows or updates the profile, returning an exit code
func runProfile(ctx context.Context, w io.Writer) int {
	store, client, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if !store.Restore(ctx) {
		fmt.Fprintln(w, "Not signed in. Run 'smartwallet login'.")
		return 1
	}

	user := store.User()
	if profileDisplayName != "" || profileBaseCurrency != "" {
		updated, err := client.UpdateProfile(ctx, api.ProfileUpdate{
			DisplayName:  profileDisplayName,
			BaseCurrency: profileBaseCurrency,
		})
		if err != nil {
			if api.IsUnreachable(err) {
				fmt.Fprintf(w, "Error: %v\n", err)
				return 2
			}
			fmt.Fprintf(w, "Update failed: %v\n", err)
			return 1
		}
		user = updated
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(user, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	fmt.Fprintf(w, "Username:      %s\n", user.Username)
	fmt.Fprintf(w, "Email:         %s\n", user.Email)
	if user.DisplayName != "" {
		fmt.Fprintf(w, "Display name:  %s\n", user.DisplayName)
	}
	if user.BaseCurrency != "" {
		fmt.Fprintf(w, "Base currency: %s\n", user.BaseCurrency)
	}
	verified := "yes"
	if !user.EmailVerified {
		verified = "no"
	}
	fmt.Fprintf(w, "Verified:      %s\n", verified)
	return 0
}
