package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/funcraft/mcauth/internals/minecraft/microsoft"
)

const (
	configKindString = iota
	configKindBool
	configKindFloat
	configKindList
)

type configEntry struct {
	kind int
	help string
	def  interface{}
}

var config = map[string]configEntry{
	"clientid":          {configKindString, "Azure application (client) id used for the device code", microsoft.DefaultClientID},
	"scopes":            {configKindList, "space separated OAuth scopes", microsoft.DefaultScopes},
	"loglevel":          {configKindString, "debug, info, warn or error", "info"},
	"logformat":         {configKindString, "text or json", "text"},
	"logfile":           {configKindString, "write logs to this file", ""},
	"nokeyring":         {configKindBool, "store credentials in a file instead of the system keyring", false},
	"noninteractive":    {configKindBool, "never prompt", false},
	"nobrowser":         {configKindBool, "do not open the browser on login", false},
	"requestspersecond": {configKindFloat, "limit outgoing requests (0 = unlimited)", 0.0},
}

var SubCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global config options",
}

// SetDefaults registers the default of every known key with viper
func SetDefaults() {
	for key, entry := range config {
		viper.SetDefault(key, entry.def)
	}
}

// Keys returns all known config keys, sorted
func Keys() []string {
	keys := make([]string, 0, len(config))
	for key := range config {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Dir is where the config file and file based credentials live
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".mcauth"
	}
	return filepath.Join(configDir, "mcauth")
}
