package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnetrun/bnet/config"
	"github.com/bnetrun/bnet/configstore"
)

var (
	couchDSN string
	couchDB  string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Push or pull a net/controller config to a CouchDB-backed store",
}

var configPushCmd = &cobra.Command{
	Use:   "push <name>",
	Short: "Store the config at --config under name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Put(context.Background(), args[0], *doc)
	},
}

var configPullCmd = &cobra.Command{
	Use:   "pull <name>",
	Short: "Fetch the config stored under name and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		doc, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func openStore() (*configstore.Store, error) {
	if couchDSN == "" {
		return nil, fmt.Errorf("--couch-dsn is required")
	}
	return configstore.Open(couchDSN, couchDB)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPushCmd)
	configCmd.AddCommand(configPullCmd)
	configCmd.PersistentFlags().StringVar(&couchDSN, "couch-dsn", "", "CouchDB connection URI")
	configCmd.PersistentFlags().StringVar(&couchDB, "couch-db", "bnetctl_config", "CouchDB database name")
}
