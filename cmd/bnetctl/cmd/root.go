package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	baseURL    string
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bnetctl",
	Short: "Run and control a bnet scheduler",
	Long:  "bnetctl runs the epoch scheduler for a configured net and drives its control surface.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := zap.NewProduction()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the net/controller config JSON")
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "base URL of a running bnetctl run server")
}
