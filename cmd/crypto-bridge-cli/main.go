// Package main is the entry point for the crypto-bridge-cli application.
// It initializes the root command and registers sub-commands for symmetric
// encryption, hashing, MACs, signatures and key derivation, then executes the
// command-line interface.
package main

import (
	"fmt"
	"log"
	"os"

	commands "github.com/dint-dev/cryptography-sub004/cmd/crypto-bridge-cli/internal/commands"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "crypto-bridge-cli",
		Short: "Cryptographic operations CLI tool",
		Long: `crypto-bridge-cli is a command-line tool for cryptographic operations.
Supports symmetric encryption/decryption, hashing, HMACs, key derivation,
and Ed25519/ECDSA key generation, signing and verification.

When the CRYPTO_BRIDGE_ENDPOINT environment variable points at a running
crypto-bridge-channeld instance, eligible operations are delegated to it;
otherwise everything runs in-process.`,
	}

	if err := initializeCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// initializeCommands registers all command groups with the root command.
func initializeCommands(rootCmd *cobra.Command) error {
	if err := commands.InitCipherCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize cipher commands: %w", err)
	}

	if err := commands.InitDigestCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize digest commands: %w", err)
	}

	if err := commands.InitSignatureCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize signature commands: %w", err)
	}

	if err := commands.InitKdfCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize kdf commands: %w", err)
	}

	return nil
}

// init sets up any necessary initialization before main runs.
func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stderr)
}
