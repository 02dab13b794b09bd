package cmd

import (
	"github.com/openledger/blockchain/foundation/blockchain/peer"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a summary of the node's current state",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			LatestBlockHash  string      `json:"latest_block_hash"`
			LatestBlockIndex uint64      `json:"latest_block_index"`
			ChainLength      int         `json:"chain_length"`
			PendingTxs       int         `json:"pending_txs"`
			KnownPeers       []peer.Peer `json:"known_peers"`
		}
		if err := get("/v1/node/status", &resp); err != nil {
			return err
		}

		return display(resp)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
