package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/funcraft/mcauth/internals/auth"
	"github.com/funcraft/mcauth/internals/commands"
	"github.com/funcraft/mcauth/internals/credentials"
	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/minecraft"
	"github.com/funcraft/mcauth/internals/offline"
	"github.com/funcraft/mcauth/internals/utils"
)

func init() {
	runner := &loginRunner{}
	cmd := commands.New(&cobra.Command{
		Use:     "login",
		Aliases: []string{"signin"},
		Short:   "Sign in with your Microsoft account",
		Long: `Sign in with your Microsoft account using a device code.
Open the shown address on any device, enter the code and confirm.
Press Ctrl+C to cancel.`,
		Args: cobra.ExactArgs(0),
	}, runner)

	cmd.Flags().BoolVar(&runner.noSave, "no-save", false, "Do not keep the refresh token for later sign-ins")
	cmd.Flags().BoolVar(&runner.noBrowser, "no-browser", false, "Do not open the browser")
	cmd.Flags().BoolVar(&runner.output.json, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&runner.output.showToken, "show-token", false, "Print the full access token")

	rootCmd.AddCommand(cmd.Command)
}

type loginRunner struct {
	noSave    bool
	noBrowser bool
	output    outputFlags
}

func (l *loginRunner) RunE(cmd *cobra.Command, args []string) error {
	out := cmd.ErrOrStderr()
	spin := commands.NewMaybeSpinner(interactive() && !l.output.json, out)

	orchestrator := newOrchestrator(auth.Config{
		OnPending: func(attempt int, remaining time.Duration) {
			spin.Update(fmt.Sprintf("Waiting for you to sign in (%s left)", remaining.Round(time.Second)))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	attempt := orchestrator.Start(ctx, func(userCode, verificationURI string) {
		copied := utils.CopyToClipboard(userCode)
		fmt.Fprintln(out, commands.DeviceCodeBox(userCode, verificationURI, copied))
		if !l.noBrowser && !viper.GetBool("nobrowser") && interactive() {
			if err := utils.OpenBrowser(verificationURI); err != nil {
				logging.Error(logs.Logger, "could not open browser", err)
			}
		}
		spin.Msg = "Waiting for you to sign in …"
		spin.Start()
	})
	result, err := attempt.Wait()
	spin.Stop()

	if err != nil {
		if merrors.KindOf(err) == merrors.GameNotOwned && interactive() {
			return l.offerOffline(cmd, orchestrator, err)
		}
		return err
	}

	if !l.noSave {
		l.save(result)
	}
	return printResult(cmd.OutOrStdout(), result, l.output)
}

// save keeps the refresh token. Failing to save does not fail the login.
func (l *loginRunner) save(result *minecraft.AuthResult) {
	stored := credentials.FromResult(result)
	if stored == nil {
		return
	}
	store, err := openStore()
	if err == nil {
		err = store.SetMicrosoftAuth(stored)
	}
	if err != nil {
		logging.Error(logs.Logger, "could not save credentials", err)
		fmt.Fprintln(os.Stderr, commands.Emoji("⚠️  ")+"Could not save your sign-in, you will have to log in again next time.")
	}
}

// offerOffline lets users without a license continue with an offline identity
func (l *loginRunner) offerOffline(cmd *cobra.Command, orchestrator *auth.Orchestrator, cause error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), commands.Render(cause))
	ok, err := utils.Confirm("Continue with an offline identity instead?", false)
	if err != nil || !ok {
		return commands.Quiet(cause)
	}
	name, err := utils.UsernamePrompt(offline.ValidateName)
	if err != nil {
		return commands.Quiet(cause)
	}
	result, err := orchestrator.SignInOffline(name)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result, l.output)
}
