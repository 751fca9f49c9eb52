package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeromej12/mixos/server"
)

var rootCmd = &cobra.Command{
	Use:   "mixos",
	Short: "MixOS is an AI-assisted DJ setlist builder.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting MixOS server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
