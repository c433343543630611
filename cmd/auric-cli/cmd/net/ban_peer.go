package net

import (
	"strconv"

	"auric/cli"

	"github.com/spf13/cobra"
)

var banPeerCmd = &cobra.Command{
	Use:   "ban-peer <ip> <duration-ms>",
	Short: "Bans a peer for the given duration.",
	Long: `Bans a peer for the given duration in milliseconds. Any existing connections
to this peer will be closed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cli.DialRPC(cmd)
		if err != nil {
			return err
		}
		ip := args[0]
		duration, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return err
		}
		return client.Call("ban_peer", map[string]interface{}{
			"ip":          ip,
			"duration_ms": duration,
		}, nil)
	},
}

func init() {
	cmd.AddCommand(banPeerCmd)
}
