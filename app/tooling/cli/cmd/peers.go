package cmd

import (
	"net/http"

	"github.com/openledger/blockchain/foundation/blockchain/peer"
	"github.com/spf13/cobra"
)

// peersCmd represents the peers command.
var peersCmd = &cobra.Command{
	Use:   "peers [address...]",
	Short: "Register peer addresses with the node",
	Long:  `Registers the given peer addresses with the node. Addresses may be schemed URLs or bare host:port pairs.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes := struct {
			Nodes []string `json:"nodes"`
		}{
			Nodes: args,
		}

		var resp struct {
			Status     string      `json:"status"`
			TotalNodes []peer.Peer `json:"total_nodes"`
		}
		if err := send(http.MethodPost, "/v1/node/register", nodes, &resp); err != nil {
			return err
		}

		return display(resp)
	},
}

func init() {
	rootCmd.AddCommand(peersCmd)
}
