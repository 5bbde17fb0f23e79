package kv

import (
	"github.com/ValentinKolb/ttlstore/cmd/util"
	"github.com/ValentinKolb/ttlstore/lib/store"
	"github.com/spf13/cobra"
)

var (
	kvStore store.IFullStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value store operations",
		PersistentPreRunE: setupKVStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(storedCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(sizeCmd)
	KeyValueCommands.AddCommand(dumpCmd)
	KeyValueCommands.AddCommand(clearCmd)
	KeyValueCommands.AddCommand(gcCmd)
	KeyValueCommands.AddCommand(gcNowCmd)
	KeyValueCommands.AddCommand(statsCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVStore builds the store the subcommands operate on
func setupKVStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Create the store from the bound configuration
	var err error
	kvStore, err = util.GetStore()

	return err
}
