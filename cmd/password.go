// ABOUTME: Password reset commands for the smartwallet CLI
// ABOUTME: Starts the forgot-password flow and completes it with the emailed token

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/0x5chn0uf/SmartWalletFX-sub000/internal/api"
)

var resetPassword string

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password <email>",
	Short: "Request a password reset email",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runForgotPassword(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <token>",
	Short: "Set a new password with a reset token",
	Long: `Set a new password using the token from the reset email.

The new password is prompted for unless given with --password.

Exit codes:
  0 - Password changed
  1 - Token rejected (invalid or expired)
  2 - Error (connectivity, configuration)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		password := resetPassword
		if password == "" {
			var err error
			password, err = promptNewPassword()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(2)
			}
		}

		exitCode := runResetPassword(ctx, os.Stdout, args[0], password)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(forgotPasswordCmd)
	rootCmd.AddCommand(resetPasswordCmd)
	resetPasswordCmd.Flags().StringVarP(&resetPassword, "password", "p", "", "New password (prompted if omitted)")
}

// promptNewPassword asks for the new password twice and checks both match
func promptNewPassword() (string, error) {
	var password, confirm string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("New password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(func(s string) error {
				if len(s) < 8 {
					return errors.New("password must be at least 8 characters")
				}
				return nil
			}),
		huh.NewInput().
			Title("Confirm password").
			EchoMode(huh.EchoModePassword).
			Value(&confirm).
			Validate(func(s string) error {
				if s != password {
					return errors.New("passwords do not match")
				}
				return nil
			}),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return password, nil
}

// runForgotPassword requests the reset email and returns an exit code
func runForgotPassword(ctx context.Context, w io.Writer, email string) int {
	_, client, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := client.RequestPasswordReset(ctx, email); err != nil {
		if api.IsUnreachable(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(w, "Request failed: %v\n", err)
		return 1
	}

	fmt.Fprintf(w, "If an account exists for %s, a reset email is on its way.\n", email)
	return 0
}

// runResetPassword completes the reset and returns an exit code
func runResetPassword(ctx context.Context, w io.Writer, token, password string) int {
	_, client, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if err := client.CompletePasswordReset(ctx, token, password); err != nil {
		if api.IsUnreachable(err) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(w, "Reset failed: %v\n", err)
		return 1
	}

	fmt.Fprintln(w, "Password changed. Run 'smartwallet login' with your new password.")
	return 0
}
