package cmd

import (
	"fmt"
	"os"

	graphviz "github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/bnetrun/bnet/config"
	"github.com/bnetrun/bnet/netviz"
)

var (
	vizOutput string
	vizFormat string
)

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Render a net config's topology to Graphviz",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return fmt.Errorf("--config is required")
		}
		doc, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		built, err := config.Build(doc, logger)
		if err != nil {
			return fmt.Errorf("building net: %w", err)
		}
		defer built.Pool.Shutdown()

		f, err := os.Create(vizOutput)
		if err != nil {
			return err
		}
		defer f.Close()

		w := netviz.New(&netviz.Config{Font: netviz.Helvetica, RankDir: netviz.LeftToRight})
		return w.Flush(f, built.Net, graphviz.Format(vizFormat))
	},
}

func init() {
	rootCmd.AddCommand(vizCmd)
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "net.svg", "output file path")
	vizCmd.Flags().StringVarP(&vizFormat, "format", "f", "svg", "graphviz output format")
}
