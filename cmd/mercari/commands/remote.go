package commands

import (
	"simplemercari/pkg/client"

	"github.com/spf13/cobra"
)

// remoteServer 非空时，读命令 (list/search/show) 走 HTTP 而不是本地目录
var remoteServer string

func addServerFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&remoteServer, "server", "", "read from a running mercari-server instead of the local catalog")
}

// isRemote 判断命令是否不需要本地 App
func isRemote(cmd *cobra.Command) bool {
	if standalone[cmd.Name()] {
		return true
	}
	f := cmd.Flags().Lookup("server")
	return f != nil && f.Value.String() != ""
}

func remoteClient() (*client.Client, error) {
	return client.NewClient(remoteServer)
}
