package cmd

import (
	"github.com/spf13/cobra"
)

// mineCmd represents the mine command.
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Signal the node to mine the pending pool into a new block",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Status string `json:"status"`
		}
		if err := get("/v1/mining/signal", &resp); err != nil {
			return err
		}

		return display(resp)
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
}
