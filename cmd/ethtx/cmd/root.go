// Package cmd implements the ethtx command-line tree: decode, encode, hash,
// sign, recover, and checksum subcommands over package ethtx.
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/ModChain/ethtx/internal/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	flagChainID uint64
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:           "ethtx",
	Short:         "Decode, encode, hash, sign, recover, and checksum Ethereum-style transactions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if !c.Flags().Changed("chain-id") {
			flagChainID = cfg.ChainID
		}

		level := slog.LevelInfo
		_ = level.UnmarshalText([]byte(cfg.LogLevel))
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		logger = logger.With("invocation_id", uuid.NewString(), "command", c.Name())
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Uint64Var(&flagChainID, "chain-id", 0, "chain id for EIP-155 v encoding in sign when the transaction has none (unset: use config default; 0: none)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", true, "print structured JSON output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func printResult(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
