package cmd

import (
	"fmt"
	"os"

	"auric/cli"
	"auric/cmd/auric-cli/cmd/net"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "auric-cli",
	Short: "Command-line RPC interface for auricd.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Int(cli.FlagRPCPort, 17768, "RPC port to connect to.")
	rootCmd.PersistentFlags().String(cli.FlagRPCHost, "127.0.0.1", "RPC host to connect to.")
	rootCmd.PersistentFlags().String(cli.FlagHome, "~/.auric-cli", "Home directory for the CLI's configuration.")
	rootCmd.PersistentFlags().String(cli.FlagFormat, "text", "Output format")
	net.AddCmd(rootCmd)
}
