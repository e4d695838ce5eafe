package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/funcraft/mcauth/internals/commands"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Sets a global config value",
		Args:  cobra.ExactArgs(2),
	}, &setRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type setRunner struct{}

func (i *setRunner) RunE(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(args[0])

	entry, ok := config[key]
	if !ok {
		return unknownKey(key)
	}
	newValue, err := parseValue(entry.kind, args[1])
	if err != nil {
		return err
	}

	previousValue := viper.Get(key)
	previousStringValue := fmt.Sprintf("%v", previousValue)
	if previousValue == nil {
		previousStringValue = "(unset)"
	}
	viper.Set(key, newValue)

	fmt.Fprintf(
		cmd.OutOrStdout(),
		"Changing config entry:\n  %s: %s → %v\n",
		key,
		gchalk.Strikethrough(previousStringValue),
		gchalk.Bold(fmt.Sprintf("%v", newValue)),
	)

	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(Dir(), "config.toml"))
}

func parseValue(kind int, value string) (interface{}, error) {
	switch kind {
	case configKindBool:
		return parseBool(value)
	case configKindString:
		return value, nil
	case configKindFloat:
		return strconv.ParseFloat(value, 64)
	case configKindList:
		return strings.Fields(value), nil
	default:
		return nil, fmt.Errorf("what? uncovered config values type")
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value. Use \"true\" or \"false\"")
	}
}
