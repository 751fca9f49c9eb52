package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jeromej12/mixos/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the MixOS HTTP server",
	Long:  `Start the MixOS HTTP server, serving the setlist, AI refinement and library APIs.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
