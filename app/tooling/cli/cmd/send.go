package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	sender    string
	recipient string
	amount    uint64
)

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a transaction to the pending pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := struct {
			Sender    string `json:"sender"`
			Recipient string `json:"recipient"`
			Amount    uint64 `json:"amount"`
		}{
			Sender:    sender,
			Recipient: recipient,
			Amount:    amount,
		}

		var resp struct {
			Status string `json:"status"`
			Index  uint64 `json:"index"`
		}
		if err := send(http.MethodPost, "/v1/tx/add", tx, &resp); err != nil {
			return err
		}

		return display(resp)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sender, "from", "f", "", "who the transaction is from")
	sendCmd.Flags().StringVarP(&recipient, "to", "t", "", "who the transaction is to")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "a", 0, "the amount to transfer")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
}
