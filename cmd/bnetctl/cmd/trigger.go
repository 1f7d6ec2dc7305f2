package cmd

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger <transition_id>",
	Short: "Fire a MANUAL transition via the control surface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Post(fmt.Sprintf("%s/transitions/%s/trigger", baseURL, args[0]), "application/json", nil)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			out, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("trigger failed: %s: %s", resp.Status, out)
		}
		fmt.Println("triggered")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}
