package cli

import (
	"errors"
	"fmt"
	"gallery/internal/galleryview"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an image",
	Long: `Add an image from a local file, a URL or a base64 data URI.

  gallery-cli add --title Sunset --file ./sunset.jpg
  gallery-cli add --title Logo --src https://example.com/logo.png`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringP("title", "t", "", "Image title")
	addCmd.Flags().StringP("src", "s", "", "Image URL or base64 data URI")
	addCmd.Flags().StringP("file", "f", "", "Path of a local image file")
	addCmd.MarkFlagsMutuallyExclusive("src", "file")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	title, _ := cmd.Flags().GetString("title")
	src, _ := cmd.Flags().GetString("src")
	file, _ := cmd.Flags().GetString("file")

	if src == "" && file == "" {
		return errors.New("one of --src or --file is required")
	}

	view, _, err := newView(cmd, nil)
	if err != nil {
		return err
	}

	view.Form = galleryview.Form{Title: title, Src: src, FilePath: file}

	if err = view.Add(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %q, %d image(s) in gallery\n", title, len(view.Images))
	return nil
}
