package cmd

import (
	"net/http"

	"github.com/openledger/blockchain/foundation/blockchain/block"
	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Run the longest-valid-chain consensus against the node's peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Replaced bool          `json:"replaced"`
			Chain    []block.Block `json:"chain"`
			Length   int           `json:"length"`
		}
		if err := send(http.MethodPost, "/v1/node/resolve", nil, &resp); err != nil {
			return err
		}

		return display(resp)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
