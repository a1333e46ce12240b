package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/ModChain/ethtx"
	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover <hex>",
	Short: "Decode a signed transaction and print its recovered sender address",
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
		addr, err := ethtx.RecoverSender(tx)
		if err != nil {
			return fmt.Errorf("recover sender: %w", err)
		}
		lower := "0x" + hex.EncodeToString(addr[:])
		checksummed, err := ethtx.ChecksumEncode(lower)
		if err != nil {
			return fmt.Errorf("checksum: %w", err)
		}
		return printResult(map[string]string{"sender": checksummed})
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
