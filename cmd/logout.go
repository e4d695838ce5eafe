package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/funcraft/mcauth/internals/commands"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:     "logout",
		Aliases: []string{"signout"},
		Short:   "Forget the stored Microsoft sign-in",
		Args:    cobra.ExactArgs(0),
	}, &logoutRunner{})

	rootCmd.AddCommand(cmd.Command)
}

type logoutRunner struct{}

func (l *logoutRunner) RunE(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	logs.Logger.Info("stored credentials removed")
	fmt.Fprintln(cmd.OutOrStdout(), commands.Emoji("👋 ")+"Signed out")
	return nil
}
