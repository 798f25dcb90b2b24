package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"simplemercari/pkg/catalog"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every item in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteServer != "" {
			cli, err := remoteClient()
			if err != nil {
				return err
			}
			items, err := cli.List(cmd.Context())
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		}
		if Svc == nil {
			return fmt.Errorf("app not initialized")
		}
		items, err := Svc.List(cmd.Context())
		if err != nil {
			return err
		}
		return printItems(cmd.OutOrStdout(), items)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Case-insensitive search on item names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if remoteServer != "" {
			cli, err := remoteClient()
			if err != nil {
				return err
			}
			items, err := cli.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		}
		if Svc == nil {
			return fmt.Errorf("app not initialized")
		}
		items, err := Svc.Search(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printItems(cmd.OutOrStdout(), items)
	},
}

func printItems(w io.Writer, items []catalog.Item) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "(no items)")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tIMAGE")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.ID, it.Name, it.Category, it.ImageFilename)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	addServerFlag(listCmd)
	addServerFlag(searchCmd)
}
