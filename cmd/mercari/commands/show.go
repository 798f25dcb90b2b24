package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"simplemercari/pkg/catalog"
	"simplemercari/pkg/types"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one item as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := types.ParseItemID(args[0])
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}

		var item *catalog.Item
		if remoteServer != "" {
			cli, cerr := remoteClient()
			if cerr != nil {
				return cerr
			}
			item, err = cli.Get(cmd.Context(), id)
		} else {
			if Svc == nil {
				return fmt.Errorf("app not initialized")
			}
			item, err = Svc.Get(cmd.Context(), id)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(item)
	},
}

var catCmd = &cobra.Command{
	Use:   "cat [image-filename]",
	Short: "Write an image to stdout (falls back to the default image)",
	Long:  `Retrieve an image by file name and write the raw bytes to stdout, e.g. mercari cat 1.jpg > out.jpg`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Svc == nil {
			return fmt.Errorf("app not initialized")
		}

		blob, err := Svc.Image(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		defer blob.Close()

		if blob.Fallback {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %s not found, showing %s\n", args[0], blob.Name)
		}
		_, err = io.Copy(cmd.OutOrStdout(), blob)
		return err
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(catCmd)
	addServerFlag(showCmd)
}
