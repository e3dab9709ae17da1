package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"path/filepath"
)

const (
	keyAPIURL = "api_url"
	keyToken  = "token"

	configDirName  = ".gallery"
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "GALLERY"
)

// configDir returns ~/.gallery, or GALLERY_HOME when set.
func configDir() string {
	if dir := os.Getenv("GALLERY_HOME"); dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", configDirName)
	}
	return filepath.Join(home, configDirName)
}

func configFilePath() string {
	return filepath.Join(configDir(), configFileName+"."+configFileType)
}

func loadConfig() {
	viper.SetConfigFile(configFilePath())
	viper.SetConfigType(configFileType)
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	// The file is optional.
	_ = viper.ReadInConfig()
}

var knownKeys = map[string]bool{
	keyAPIURL: true,
	keyToken:  true,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client settings",
	Long:  `Read and write settings stored at ~/.gallery/config.yaml.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value (api_url, token)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !knownKeys[key] {
			return fmt.Errorf("unknown config key %q", key)
		}

		if err := os.MkdirAll(configDir(), 0o700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		viper.Set(key, value)

		if err := viper.WriteConfigAs(configFilePath()); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !knownKeys[args[0]] {
			return fmt.Errorf("unknown config key %q", args[0])
		}

		fmt.Fprintln(cmd.OutOrStdout(), viper.GetString(args[0]))
		return nil
	},
}
