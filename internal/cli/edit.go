package cli

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <image-id>",
	Short: "Rename an image or replace its source",
	Long: `Edit an image. Only the flags given are changed.

  gallery-cli edit 3f0c... --title "New title"
  gallery-cli edit 3f0c... --file ./better.png`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().StringP("src", "s", "", "New image URL or base64 data URI")
	editCmd.Flags().StringP("file", "f", "", "Path of a replacement image file")
	editCmd.MarkFlagsMutuallyExclusive("src", "file")
	editCmd.MarkFlagsOneRequired("title", "src", "file")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid image id %q", args[0])
	}

	view, _, err := newView(cmd, nil)
	if err != nil {
		return err
	}

	if err = view.Mount(cmd.Context()); err != nil {
		return err
	}

	if err = view.Edit(id); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("title") {
		view.Form.Title, _ = flags.GetString("title")
	}
	if flags.Changed("src") {
		view.Form.Src, _ = flags.GetString("src")
	}
	if flags.Changed("file") {
		view.Form.FilePath, _ = flags.GetString("file")
	}

	if err = view.Update(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id)
	return nil
}
