package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/funcraft/mcauth/internals/auth"
	"github.com/funcraft/mcauth/internals/commands"
	"github.com/funcraft/mcauth/internals/credentials"
	"github.com/funcraft/mcauth/internals/logging"
)

func init() {
	runner := &refreshRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "refresh",
		Short: "Sign in again using the stored Microsoft sign-in",
		Args:  cobra.ExactArgs(0),
	}, runner)

	cmd.Flags().BoolVar(&runner.output.json, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&runner.output.showToken, "show-token", false, "Print the full access token")

	rootCmd.AddCommand(cmd.Command)
}

type refreshRunner struct {
	output outputFlags
}

func (r *refreshRunner) RunE(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if store.MicrosoftAuth == nil || store.MicrosoftAuth.RefreshToken == "" {
		return &commands.CliError{
			Text:        "You are not signed in",
			Code:        "not_signed_in",
			Suggestions: []string{"Run the login command first"},
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spin := commands.NewMaybeSpinner(interactive() && !r.output.json, cmd.ErrOrStderr())
	spin.Msg = "Signing in as " + store.MicrosoftAuth.Username + " …"
	spin.Start()
	result, err := newOrchestrator(auth.Config{}).SignInWithRefreshToken(ctx, store.MicrosoftAuth.RefreshToken)
	spin.Stop()
	if err != nil {
		return err
	}

	// the refresh token is usually rotated
	if stored := credentials.FromResult(result); stored != nil {
		if err := store.SetMicrosoftAuth(stored); err != nil {
			logging.Error(logs.Logger, "could not save credentials", err)
		}
	}
	return printResult(cmd.OutOrStdout(), result, r.output)
}
