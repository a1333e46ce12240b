package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ModChain/ethtx"
	"github.com/ModChain/secp256k1"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

var signKeyHex string

var signCmd = &cobra.Command{
	Use:   "sign <json-file>",
	Short: "Sign an unsigned JSON transaction and print the signed encoding",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if signKeyHex == "" {
			return fmt.Errorf("--key is required")
		}
		keyBytes, err := parseBytes(signKeyHex)
		if err != nil {
			return fmt.Errorf("parse key: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("private key must be 32 bytes, got %d", len(keyBytes))
		}
		priv := secp256k1.PrivKeyFromBytes(keyBytes)

		data, err := readJSONArg(args[0])
		if err != nil {
			return err
		}
		var j jsonTx
		if err := json.Unmarshal(data, &j); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
		tx, err := fromJSONTx(j)
		if err != nil {
			return fmt.Errorf("convert json to transaction: %w", err)
		}
		if tx.ChainID == nil && flagChainID != 0 {
			tx.ChainID = uint256.NewInt(flagChainID)
		}

		h, err := ethtx.SigningHash(tx)
		if err != nil {
			return fmt.Errorf("signing hash: %w", err)
		}
		_, sig, err := ethtx.Sign(h, priv, tx.ChainID)
		if err != nil {
			return fmt.Errorf("sign: %w", err)
		}
		ethtx.ApplySignature(tx, sig, tx.ChainID)

		raw, err := ethtx.EncodeTransaction(tx)
		if err != nil {
			return fmt.Errorf("encode signed transaction: %w", err)
		}
		logger.Info("signed transaction", "type", tx.Type.String())
		return printResult(map[string]any{
			"raw": "0x" + hex.EncodeToString(raw),
			"tx":  toJSONTx(tx),
		})
	},
}

func init() {
	signCmd.Flags().StringVar(&signKeyHex, "key", "", "hex-encoded 32-byte private key")
	rootCmd.AddCommand(signCmd)
}
