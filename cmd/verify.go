// ABOUTME: Email verification commands for the smartwallet CLI
// ABOUTME: Confirms an address with an emailed token or requests a fresh one

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
)

var verifyEmailCmd = &cobra.Command{
	Use:   "verify-email <token>",
	Short: "Verify your email address",
	Long: `Verify your email address with the token from the verification email.

Successful verification also signs you in.

Exit codes:
  0 - Email verified and signed in
  1 - Token rejected (invalid or expired)
  2 - Error (connectivity, configuration)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runVerifyEmail(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var resendVerificationCmd = &cobra.Command{
	Use:   "resend-verification <email>",
	Short: "Request a new verification email",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runResendVerification(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyEmailCmd)
	rootCmd.AddCommand(resendVerificationCmd)
}

// runVerifyEmail confirms the token and returns an exit code
func runVerifyEmail(ctx context.Context, w io.Writer, token string) int {
	store, _, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := store.VerifyEmail(ctx, token); err != nil {
		if api.IsUnreachable(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(w, "Verification failed: %v\n", err)
		return 1
	}

	user := store.User()
	fmt.Fprintf(w, "Email verified. Signed in as %s.\n", user.Username)
	return 0
}

// runResendVerification requests a fresh token and returns an exit code
func runResendVerification(ctx context.Context, w io.Writer, email string) int {
	_, client, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := client.ResendVerification(ctx, email); err != nil {
		if api.IsUnreachable(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(w, "Request failed: %v\n", err)
		return 1
	}

	fmt.Fprintf(w, "Verification email sent to %s.\n", email)
	return 0
}
