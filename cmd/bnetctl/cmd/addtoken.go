package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var addTokenBlocks string

var addTokenCmd = &cobra.Command{
	Use:   "add-token <place_id>",
	Short: "Insert a token into a place via the control surface",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		placeID := args[0]
		blocks := json.RawMessage("{}")
		if addTokenBlocks != "" {
			blocks = json.RawMessage(addTokenBlocks)
		}
		body, err := json.Marshal(map[string]json.RawMessage{"blocks": blocks})
		if err != nil {
			return err
		}
		resp, err := http.Post(fmt.Sprintf("%s/tokens/%s", baseURL, placeID), "application/json", bytes.NewReader(body))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		out, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("add-token failed: %s: %s", resp.Status, out)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addTokenCmd)
	addTokenCmd.Flags().StringVarP(&addTokenBlocks, "blocks", "b", "", `JSON object of content blocks, e.g. '{"recipe": {"temp_c": 100}}'`)
}
