package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/funcraft/mcauth/internals/auth"
	"github.com/funcraft/mcauth/internals/commands"
	"github.com/funcraft/mcauth/internals/merrors"
	"github.com/funcraft/mcauth/internals/offline"
	"github.com/funcraft/mcauth/internals/utils"
)

func init() {
	runner := &offlineRunner{}
	cmd := commands.New(&cobra.Command{
		Use:   "offline [name]",
		Short: "Create an offline identity (no account needed)",
		Long: `Creates an offline identity. The same name always gets the same UUID.
Offline identities can only join servers in offline mode.`,
		Args: cobra.MaximumNArgs(1),
	}, runner)

	cmd.Flags().BoolVar(&runner.output.json, "json", false, "Print the result as JSON")

	rootCmd.AddCommand(cmd.Command)
}

type offlineRunner struct {
	output outputFlags
}

func (o *offlineRunner) RunE(cmd *cobra.Command, args []string) error {
	var name string
	switch {
	case len(args) == 1:
		name = strings.TrimSpace(args[0])
	case interactive():
		var err error
		if name, err = utils.UsernamePrompt(offline.ValidateName); err != nil {
			return err
		}
	default:
		return merrors.New(merrors.InvalidUsername, "no name given")
	}

	orchestrator := auth.New(auth.Config{Logger: logs.Logger})
	result, err := orchestrator.SignInOffline(name)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result, o.output)
}
