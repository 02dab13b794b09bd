package cmd

import (
	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/spf13/cobra"
)

// chainCmd represents the chain command.
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the node's full chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Chain  []block.Block `json:"chain"`
			Length int           `json:"length"`
		}
		if err := get("/v1/chain", &resp); err != nil {
			return err
		}

		return display(resp)
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
}
