package net

import (
	"auric/cli"

	"github.com/spf13/cobra"
)

var unbanPeerCmd = &cobra.Command{
	Use:   "unban-peer <ip>",
	Short: "Unbans a peer.",
	Long: `Unbans a peer. A connection with the peer will not be automatically reestablished;
auricd will either reconnect to the unbanned peer the next time it refills its
peer list or following the add-peer CLI command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cli.DialRPC(cmd)
		if err != nil {
			return err
		}
		return client.Call("unban_peer", map[string]interface{}{"ip": args[0]}, nil)
	},
}

func init() {
	cmd.AddCommand(unbanPeerCmd)
}
