package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"simplemercari/pkg/service"

	"github.com/spf13/cobra"
)

var (
	addName     string
	addCategory string
)

var addCmd = &cobra.Command{
	Use:   "add [image]",
	Short: "Add an item to the local catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("app not initialized")
		}
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		item, err := Svc.Submit(cmd.Context(), service.Submission{
			Name:          addName,
			Category:      addCategory,
			ImageFilename: filepath.Base(path),
			Image:         data,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", path, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ Added item %d: %s [%s] (%s)\n", item.ID, item.Name, item.Category, item.ImageFilename)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addName, "name", "n", "", "item name")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "item category")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("category")
}
