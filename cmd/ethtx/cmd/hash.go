package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/ModChain/ethtx"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <hex>",
	Short: "Decode a raw signed transaction and print its transaction hash",
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
		h, err := ethtx.TransactionHash(tx)
		if err != nil {
			return fmt.Errorf("transaction hash: %w", err)
		}
		return printResult(map[string]string{"hash": "0x" + hex.EncodeToString(h[:])})
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}
