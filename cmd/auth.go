package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schedly/schedly/internal/google"
)

func newAuthCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "auth [account]",
		Short: "Authorize a Google account for calendar access",
		Long: `Run the OAuth authorization flow for the google backend and store the
resulting token under the given account name (default: "default").

The command prints an authorization URL; open it in a browser, grant
access, and paste the authorization code back into the terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := google.DefaultAccount
			if len(args) > 0 {
				account = args[0]
			}
			return runAuth(cmd.Context(), account, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Re-authorize even if a token already exists")

	return cmd
}

func runAuth(ctx context.Context, account string, force bool) error {
	// Tokens written by older releases live at a flat path; move them to
	// the per-account layout before checking.
	if err := google.MigrateDefaultToken(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to migrate legacy token: %v\n", err)
	}

	if google.HasTokenForAccount(account) && !force {
		fmt.Printf("Account %s is already authorized (use --force to re-authorize).\n", account)
		return nil
	}

	fmt.Printf("Visit the following URL to authorize schedly for account %s:\n\n  %s\n\n", account, google.GetAuthURL())
	fmt.Print("Paste the authorization code: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("no authorization code provided")
	}

	if err := google.SaveTokenForAccount(ctx, account, code); err != nil {
		return err
	}

	fmt.Printf("Token saved for account %s.\n", account)
	return nil
}
