package cmd

import (
	"fmt"

	"github.com/ModChain/ethtx"
	"github.com/spf13/cobra"
)

var checksumCmd = &cobra.Command{
	Use:   "checksum <address>",
	Short: "Apply or verify an EIP-55 checksum on an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		valid := ethtx.ChecksumVerify(args[0])
		encoded, err := ethtx.ChecksumEncode(args[0])
		if err != nil {
			return fmt.Errorf("checksum encode: %w", err)
		}
		return printResult(map[string]any{
			"checksummed": encoded,
			"validInput":  valid,
		})
	},
}

func init() {
	rootCmd.AddCommand(checksumCmd)
}
