package cmd

import (
	"fmt"

	"github.com/ModChain/ethtx"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a raw transaction and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		raw, err := parseBytes(args[0])
		if err != nil {
			return fmt.Errorf("parse hex: %w", err)
		}
		tx, err := ethtx.DecodeTransaction(raw)
		if err != nil {
			return fmt.Errorf("decode transaction: %w", err)
		}
		logger.Debug("decoded transaction", "type", tx.Type.String())
		return printResult(toJSONTx(tx))
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
