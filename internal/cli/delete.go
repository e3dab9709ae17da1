package cli

import (
	"bufio"
	"fmt"
	"gallery/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"strings"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <image-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an image",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid image id %q", args[0])
	}

	yes, _ := cmd.Flags().GetBool("yes")

	deleted := false
	confirm := func(image models.Image) bool {
		if !yes {
			fmt.Fprintf(cmd.OutOrStdout(), "Delete %q? [y/N] ", image.Title)

			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				return false
			}
		}
		deleted = true
		return true
	}

	view, _, err := newView(cmd, confirm)
	if err != nil {
		return err
	}

	if err = view.Mount(cmd.Context()); err != nil {
		return err
	}

	if err = view.Delete(cmd.Context(), id); err != nil {
		return err
	}

	if !deleted {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}
