package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/funcraft/mcauth/internals/commands"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "get [key]",
		Short: "Gets a global config value (or all of them)",
		Args:  cobra.MaximumNArgs(1),
	}, &getRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type getRunner struct{}

func (i *getRunner) RunE(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, key := range Keys() {
			fmt.Fprintf(out, "  %s: %v\n", key, viper.Get(key))
		}
		return nil
	}

	key := strings.ToLower(args[0])
	entry, ok := config[key]
	if !ok {
		return unknownKey(key)
	}

	fmt.Fprintf(out, "  %s: %v\n", key, viper.Get(key))
	if entry.help != "" {
		fmt.Fprintf(out, "  (%s)\n", entry.help)
	}
	return nil
}

func unknownKey(key string) error {
	return &commands.CliError{
		Text:        fmt.Sprintf("config key %q does not exist", key),
		Suggestions: []string{"Known keys: " + strings.Join(Keys(), ", ")},
	}
}
