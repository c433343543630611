package cmd

import (
	"fmt"

	"auric/chainfile"
	"auric/config"
	"auric/store"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var exportBlocksCmd = &cobra.Command{
	Use:   "export-blocks <directory>",
	Short: "Exports the local chain to a blocks.bin/blockindexes.bin pair and exits.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		destDir := args[0]

		dbPath := config.ExpandDBPath(configuredHomeDir)
		db, err := store.Open(dbPath)
		if err != nil {
			return errors.Wrap(err, "error opening db")
		}
		defer db.Close()

		chainPath := config.ExpandChainPath(configuredHomeDir)
		cf, err := chainfile.Open(chainPath)
		if err != nil {
			return errors.Wrap(err, "error opening chain file")
		}
		defer cf.Close()

		if err := chainfile.Export(db, cf, destDir); err != nil {
			return errors.Wrap(err, "error exporting blocks")
		}

		fmt.Printf("Successfully exported blocks to %s.\n", destDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportBlocksCmd)
}
