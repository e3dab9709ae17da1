package cli

import (
	"fmt"
	"github.com/spf13/cobra"
	"text/tabwriter"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your images",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	view, c, err := newView(cmd, nil)
	if err != nil {
		return err
	}

	if err = view.Mount(cmd.Context()); err != nil {
		return err
	}

	if len(view.Images) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No images yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tFILE\tURL")
	for _, img := range view.Images {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", img.ID, img.Title, img.FileName, c.ResolveURL(img.FileURL))
	}

	return w.Flush()
}
