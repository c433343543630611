package net

import (
	"os"
	"strconv"

	"auric/cli"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type statusResult struct {
	Height        uint64 `json:"height"`
	PeerID        string `json:"peer_id"`
	InboundPeers  int    `json:"inbound_peers"`
	OutboundPeers int    `json:"outbound_peers"`
	TxBytes       uint64 `json:"tx_bytes"`
	RxBytes       uint64 `json:"rx_bytes"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Returns network status information.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cli.DialRPC(cmd)
		if err != nil {
			return err
		}

		var res statusResult
		if err := client.Call("status", nil, &res); err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Append([]string{"Peer ID", res.PeerID})
		table.Append([]string{"Height", strconv.FormatUint(res.Height, 10)})
		table.Append([]string{"Inbound Peers", strconv.Itoa(res.InboundPeers)})
		table.Append([]string{"Outbound Peers", strconv.Itoa(res.OutboundPeers)})
		table.Append([]string{"Tx Bytes", bandwidthToStr(res.TxBytes)})
		table.Append([]string{"Rx Bytes", bandwidthToStr(res.RxBytes)})
		table.Render()
		return nil
	},
}

func init() {
	cmd.AddCommand(statusCmd)
}
