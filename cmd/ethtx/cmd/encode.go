package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ModChain/ethtx"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <json-file>",
	Short: "Encode a JSON transaction description to its raw wire form",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
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
		raw, err := ethtx.EncodeTransaction(tx)
		if err != nil {
			return fmt.Errorf("encode transaction: %w", err)
		}
		return printResult(map[string]string{"raw": "0x" + hex.EncodeToString(raw)})
	},
}

// readJSONArg reads the JSON document from a file path, or from stdin when
// arg is "-".
func readJSONArg(arg string) ([]byte, error) {
	if arg == "-" {
		return readAll(os.Stdin)
	}
	return os.ReadFile(arg)
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
