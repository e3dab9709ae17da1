// Package cli implements the gallery command line client.
package cli

import (
	"fmt"
	"gallery/internal/client"
	"gallery/internal/galleryview"
	"gallery/internal/lib/logger/handlers/slogpretty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"
)

const defaultAPIURL = "http://localhost:8082"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "gallery-cli",
	Short: "Manage your image gallery",
	Long: `gallery-cli lists, adds, edits and deletes images in your gallery.

Settings are read from ~/.gallery/config.yaml and GALLERY_* environment
variables. Flags take precedence over both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().String("api-url", "", "Gallery API base URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token used to authenticate")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")

	_ = viper.BindPFlag(keyAPIURL, rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag(keyToken, rootCmd.PersistentFlags().Lookup("token"))
	viper.SetDefault(keyAPIURL, defaultAPIURL)
}

// Execute runs the root command with the build version injected via ldflags.
func Execute(version string) error {
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{Level: level},
	}

	return slog.New(opts.NewPrettyHandler(cmd.ErrOrStderr()))
}

// newView builds a view backed by the configured API.
func newView(cmd *cobra.Command, confirm galleryview.ConfirmFunc) (*galleryview.View, *client.Client, error) {
	apiURL := viper.GetString(keyAPIURL)
	token := viper.GetString(keyToken)
	if token == "" {
		return nil, nil, fmt.Errorf("no token configured, run '%s config set token <token>' or set GALLERY_TOKEN", rootCmd.Name())
	}

	c := client.New(apiURL, token)

	return galleryview.New(newLogger(cmd), c, confirm), c, nil
}
