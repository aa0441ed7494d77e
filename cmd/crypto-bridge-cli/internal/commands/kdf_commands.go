package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/purecrypto"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// KdfCommandHandler encapsulates logic for key derivation via CLI.
type KdfCommandHandler struct {
	logger logger.Logger
}

// NewKdfCommandHandler initializes and returns a KdfCommandHandler instance
// with a configured logger.
func NewKdfCommandHandler() (*KdfCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	return &KdfCommandHandler{logger: loggerInstance}, nil
}

// DeriveKeyCmd derives a key from a secret file and persists it
func (commandHandler *KdfCommandHandler) DeriveKeyCmd(cmd *cobra.Command, _ []string) {
	algorithm, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	secretFilePath, err := cmd.Flags().GetString("secret-file")
	if err != nil {
		commandHandler.logger.Error("invalid secret-file flag ", err)
		return
	}
	outputFilePath, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag ", err)
		return
	}
	salt, err := cmd.Flags().GetBytesHex("salt")
	if err != nil {
		commandHandler.logger.Error("invalid salt flag ", err)
		return
	}
	info, err := cmd.Flags().GetBytesHex("info")
	if err != nil {
		commandHandler.logger.Error("invalid info flag ", err)
		return
	}
	length, err := cmd.Flags().GetInt("length")
	if err != nil {
		commandHandler.logger.Error("invalid length flag ", err)
		return
	}
	iterations, err := cmd.Flags().GetInt("iterations")
	if err != nil {
		commandHandler.logger.Error("invalid iterations flag ", err)
		return
	}

	var kdf algorithms.KdfAlgorithm
	switch algorithm {
	case algorithms.NameHkdf:
		kdf = purecrypto.NewHkdf()
	case algorithms.NamePbkdf2:
		kdf, err = purecrypto.NewPbkdf2(iterations)
		if err != nil {
			commandHandler.logger.Error(err)
			return
		}
	default:
		commandHandler.logger.Error("unknown kdf algorithm ", algorithm)
		return
	}

	secretBytes, err := os.ReadFile(filepath.Clean(secretFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	derived, err := kdf.DeriveKey(context.Background(), material.NewSecretKey(secretBytes), salt, info, length)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	raw, err := derived.Extract(context.Background())
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	err = os.WriteFile(outputFilePath, raw, 0600)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Derived key saved to ", outputFilePath)
}

// InitKdfCommands registers key derivation commands
func InitKdfCommands(rootCmd *cobra.Command) error {
	handler, err := NewKdfCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create kdf command handler %w", err)
	}

	var deriveKeyCmd = &cobra.Command{
		Use:   "derive-key",
		Short: "Derive a key from secret material",
		Run:   handler.DeriveKeyCmd,
	}
	deriveKeyCmd.Flags().StringP("algorithm", "", algorithms.NameHkdf, "KDF algorithm (Hkdf, Pbkdf2)")
	deriveKeyCmd.Flags().StringP("secret-file", "", "", "Path to the input secret material")
	deriveKeyCmd.Flags().StringP("output-file", "", "", "Path to the derived key output file")
	deriveKeyCmd.Flags().BytesHexP("salt", "", nil, "Salt in hex")
	deriveKeyCmd.Flags().BytesHexP("info", "", nil, "Context info in hex (Hkdf only)")
	deriveKeyCmd.Flags().IntP("length", "", 32, "Derived key length in bytes")
	deriveKeyCmd.Flags().IntP("iterations", "", 600000, "Iteration count (Pbkdf2 only)")
	rootCmd.AddCommand(deriveKeyCmd)

	return nil
}
