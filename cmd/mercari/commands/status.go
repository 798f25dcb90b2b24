package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("app not initialized")
		}
		cats, err := Svc.Categories(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(cats) == 0 {
			fmt.Fprintln(out, "(no categories)")
			return nil
		}
		for _, c := range cats {
			fmt.Fprintf(out, "%d\t%s\n", c.ID, c.Name)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog backends and the latest item id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MC == nil || Svc == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()

		latest, err := Svc.LatestID(ctx)
		if err != nil {
			return err
		}
		cats, err := Svc.Categories(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database:   %s %s\n", MC.Config.Database.Driver, MC.Config.Database.Path)
		fmt.Fprintf(out, "Images:     %s %s (naming: %s)\n", MC.Config.Storage.Type, MC.Config.Storage.Path, MC.Naming)
		fmt.Fprintf(out, "Categories: %d\n", len(cats))
		if latest.IsZero() {
			fmt.Fprintln(out, "Latest item: (none)")
		} else {
			fmt.Fprintf(out, "Latest item: %d\n", latest)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(statusCmd)
}
