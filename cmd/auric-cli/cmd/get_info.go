package cmd

import (
	"os"
	"strconv"

	"auric/cli"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type getInfoResult struct {
	Height     uint64 `json:"height"`
	PeerID     string `json:"peer_id"`
	PeerCount  int    `json:"peer_count"`
	TxBytes    uint64 `json:"tx_bytes"`
	RxBytes    uint64 `json:"rx_bytes"`
	Version    string `json:"version"`
	TopBlockID string `json:"top_block_id"`
}

var getInfoCmd = &cobra.Command{
	Use:   "get-info",
	Short: "Returns general information about the node and chain.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cli.DialRPC(cmd)
		if err != nil {
			return err
		}

		var res getInfoResult
		if err := client.Call("get_info", nil, &res); err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Append([]string{"Version", res.Version})
		table.Append([]string{"Peer ID", res.PeerID})
		table.Append([]string{"Height", strconv.FormatUint(res.Height, 10)})
		table.Append([]string{"Top Block ID", res.TopBlockID})
		table.Append([]string{"Peer Count", strconv.Itoa(res.PeerCount)})
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getInfoCmd)
}
