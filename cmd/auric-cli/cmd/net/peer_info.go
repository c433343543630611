package net

import (
	"encoding/json"
	"fmt"
	"os"

	"auric/cli"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type peer struct {
	PeerID    string `json:"peer_id"`
	IP        string `json:"ip"`
	Banned    bool   `json:"banned"`
	Connected bool   `json:"connected"`
	TxBytes   uint64 `json:"tx_bytes"`
	RxBytes   uint64 `json:"rx_bytes"`
}

type listPeersResult struct {
	Peers []peer `json:"peers"`
}

var listPeersCmd = &cobra.Command{
	Use:   "list-peers",
	Short: "Returns information about all peers auricd has heard of.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := cli.DialRPC(cmd)
		if err != nil {
			return err
		}

		var res listPeersResult
		if err := client.Call("list_peers", nil, &res); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString(cli.FlagFormat)
		if format == "json" {
			encoder := json.NewEncoder(os.Stdout)
			for _, p := range res.Peers {
				if err := encoder.Encode(p); err != nil {
					return err
				}
			}
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Peer ID", "IP", "Banned", "Connected", "Tx Bytes", "Rx Bytes"})
		for _, p := range res.Peers {
			table.Append([]string{
				p.PeerID,
				p.IP,
				boolToStr(p.Banned),
				boolToStr(p.Connected),
				bandwidthToStr(p.TxBytes),
				bandwidthToStr(p.RxBytes),
			})
		}
		table.Render()
		fmt.Println("")
		fmt.Printf("Total: %d\n", len(res.Peers))
		return nil
	},
}

func bandwidthToStr(stat uint64) string {
	if stat == 0 {
		return "-"
	}

	unit := uint64(1000)
	if stat < unit {
		return fmt.Sprintf("%d B", stat)
	}
	div, exp := unit, 0
	for n := stat / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(stat)/float64(div), "kMGTPE"[exp])
}

func boolToStr(val bool) string {
	if val {
		return "TRUE"
	}
	return "FALSE"
}

func init() {
	cmd.AddCommand(listPeersCmd)
}
