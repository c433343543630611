package net

import (
	"errors"
	"strings"

	"auric/cli"

	"github.com/spf13/cobra"
)

var (
	verifyPeerID bool
)

var addPeerCmd = &cobra.Command{
	Use:   "add-peer <peer-id?>@<ip>",
	Short: "Adds a peer.",
	Long:  `Adds a peer. If the peer is banned, this command is a no-op.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cli.DialRPC(cmd)
		if err != nil {
			return err
		}
		splits := strings.Split(args[0], "@")
		if verifyPeerID && len(splits) == 1 {
			return errors.New("must define a peer ID if the peer ID is to be verified")
		}

		var peerID, ip string
		switch len(splits) {
		case 1:
			ip = splits[0]
		case 2:
			peerID, ip = splits[0], splits[1]
		default:
			return errors.New("must specify the peer as <peer-id?>@<ip>")
		}

		return client.Call("add_peer", map[string]interface{}{
			"peer_id":        peerID,
			"ip":             ip,
			"verify_peer_id": verifyPeerID,
		}, nil)
	},
}

func init() {
	cmd.AddCommand(addPeerCmd)
	addPeerCmd.Flags().BoolVar(&verifyPeerID, "verify", false, "Verify the remote peer's ID")
}
