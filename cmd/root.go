package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwalton/gchalk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/oauth2"

	"github.com/funcraft/mcauth/cmd/config"
	"github.com/funcraft/mcauth/internals/auth"
	"github.com/funcraft/mcauth/internals/commands"
	"github.com/funcraft/mcauth/internals/credentials"
	"github.com/funcraft/mcauth/internals/logging"
	"github.com/funcraft/mcauth/internals/minecraft/microsoft"
	"github.com/funcraft/mcauth/internals/ownhttp"
)

var (
	// Version is set by main
	Version string
	// Commit is set by main
	Commit string
)

var (
	cfgFile       string
	disableColors bool
	// logs is set up before every command runs and shut down after
	logs *logging.Logging
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mcauth",
	Short: "Sign in to Minecraft, with or without a Microsoft account",
	Long: `mcauth signs you in to Minecraft using the Microsoft device code flow
(Xbox Live, XSTS and Minecraft Services), or creates an offline identity.`,

	Example: `
  mcauth login
  mcauth offline Steve
  mcauth refresh --json`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.Setup(logging.Options{
			Format: viper.GetString("logformat"),
			Level:  viper.GetString("loglevel"),
			File:   viper.GetString("logfile"),
		})
		if err != nil {
			return fmt.Errorf("could not set up logging: %w", err)
		}
		logs = l
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return logs.Shutdown()
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion",
	Args:  cobra.MaximumNArgs(1),
	Short: "Output shell completion code for bash",
	Long: `To load completion run

. <(mcauth completion)

You can add that line to your ~/.bashrc or ~/.profile to
persist completion in your shell.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenBashCompletion(cmd.OutOrStdout())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(execute())
}

// execute runs the root command and returns the exit code. Logging is shut
// down on every path, cobra skips PersistentPostRunE when a command fails.
func execute() int {
	rootCmd.Version = Version
	err := rootCmd.Execute()
	if shutdownErr := logs.Shutdown(); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if err == nil {
		return 0
	}
	if rendered := commands.Render(err); rendered != "" {
		fmt.Fprintln(rootCmd.ErrOrStderr(), rendered)
	}
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is <config dir>/mcauth/config.toml)")
	flags.BoolVar(&disableColors, "no-color", false, "disable color output")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.Bool("non-interactive", false, "never prompt")

	viper.BindPFlag("loglevel", flags.Lookup("log-level"))
	viper.BindPFlag("logformat", flags.Lookup("log-format"))
	viper.BindPFlag("logfile", flags.Lookup("log-file"))
	viper.BindPFlag("noninteractive", flags.Lookup("non-interactive"))

	config.SetDefaults()

	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(config.SubCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if disableColors || os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		gchalk.SetLevel(gchalk.LevelNone)
		commands.EmojiEnabled = false
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.Dir())
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("MCAUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// a missing config file is fine
	_ = viper.ReadInConfig()
}

func globalDir() string {
	return config.Dir()
}

func interactive() bool {
	return !viper.GetBool("noninteractive") && commands.IsTerminal()
}

// newMicrosoftClient builds the client for every Microsoft, Xbox and Minecraft call
func newMicrosoftClient() *microsoft.MicrosoftClient {
	httpClient := ownhttp.New(ownhttp.Options{
		RequestsPerSecond: viper.GetFloat64("requestspersecond"),
	})
	oauthConfig := &oauth2.Config{
		ClientID: viper.GetString("clientid"),
		Scopes:   viper.GetStringSlice("scopes"),
	}
	return microsoft.New(httpClient, oauthConfig, microsoft.WithLogger(logs.Logger))
}

func newOrchestrator(cfg auth.Config) *auth.Orchestrator {
	client := newMicrosoftClient()
	cfg.Device = client
	cfg.Refresher = client
	cfg.Federator = client
	cfg.Logger = logs.Logger
	return auth.New(cfg)
}

func openStore() (*credentials.Store, error) {
	return credentials.New(filepath.Clean(globalDir()), viper.GetBool("nokeyring"))
}
