package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"simplemercari/pkg/client"

	"github.com/spf13/cobra"
)

var (
	pushServer   string
	pushName     string
	pushCategory string
)

var pushCmd = &cobra.Command{
	Use:   "push [image]",
	Short: "Submit an item to a running mercari-server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := client.NewClient(pushServer)
		if err != nil {
			return err
		}

		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		receipt, err := cli.Push(cmd.Context(), pushName, pushCategory, filepath.Base(path), f)
		if err != nil {
			return fmt.Errorf("push failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ %s\n", receipt.Message)
		if receipt.Item != nil {
			fmt.Fprintf(out, "   id: %d | category: %s | image: %s\n", receipt.Item.ID, receipt.Item.Category, receipt.Item.ImageFilename)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)

	pushCmd.Flags().StringVar(&pushServer, "server", "http://localhost:9000", "mercari-server address")
	pushCmd.Flags().StringVarP(&pushName, "name", "n", "", "item name")
	pushCmd.Flags().StringVarP(&pushCategory, "category", "c", "", "item category")
	_ = pushCmd.MarkFlagRequired("name")
	_ = pushCmd.MarkFlagRequired("category")
}
