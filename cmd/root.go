package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/ttlstore/cmd/kv"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ttlstore",
		Short: "expiring key-value store",
		Long: fmt.Sprintf(`ttlstore (v%s)

An embeddable key-value store library written in Go, with per-entry
lifespans, lazy watermark-gated garbage collection and pluggable
storage backends (memory, file, sqlite, redis).`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ttlstore",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ttlstore v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
