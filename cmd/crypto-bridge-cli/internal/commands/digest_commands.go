package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/purecrypto"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// DigestCommandHandler encapsulates logic for hashing and MAC operations via CLI.
type DigestCommandHandler struct {
	logger logger.Logger
}

// NewDigestCommandHandler initializes and returns a DigestCommandHandler
// instance with a configured logger.
func NewDigestCommandHandler() (*DigestCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	return &DigestCommandHandler{logger: loggerInstance}, nil
}

// DigestCmd hashes a file and prints the digest in hex
func (commandHandler *DigestCommandHandler) DigestCmd(cmd *cobra.Command, _ []string) {
	algorithm, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		commandHandler.logger.Error("invalid algorithm flag ", err)
		return
	}
	inputFilePath, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}

	hash, err := hashFor(algorithm)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	data, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	digest, err := hash.Digest(context.Background(), data)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	fmt.Println(hex.EncodeToString(digest))
}

// HmacCmd computes an HMAC over a file and prints the tag in hex
func (commandHandler *DigestCommandHandler) HmacCmd(cmd *cobra.Command, _ []string) {
	hashName, err := cmd.Flags().GetString("hash")
	if err != nil {
		commandHandler.logger.Error("invalid hash flag ", err)
		return
	}
	inputFilePath, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}
	keyFilePath, err := cmd.Flags().GetString("key-file")
	if err != nil {
		commandHandler.logger.Error("invalid key-file flag ", err)
		return
	}

	hash, err := hashFor(hashName)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	mac, err := purecrypto.NewHmac(hash)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	data, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	keyBytes, err := os.ReadFile(filepath.Clean(keyFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	tag, err := mac.Compute(context.Background(), material.NewSecretKey(keyBytes), data, nil)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	fmt.Println(hex.EncodeToString(tag))
}

// InitDigestCommands registers hashing and MAC commands
func InitDigestCommands(rootCmd *cobra.Command) error {
	handler, err := NewDigestCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create digest command handler %w", err)
	}

	var digestCmd = &cobra.Command{
		Use:   "digest",
		Short: "Hash a file",
		Run:   handler.DigestCmd,
	}
	digestCmd.Flags().StringP("algorithm", "", algorithms.NameSha256, "Hash algorithm (Sha256, Sha384, Sha512, Blake2b, Blake2s)")
	digestCmd.Flags().StringP("input-file", "", "", "Path to input file to hash")
	rootCmd.AddCommand(digestCmd)

	var hmacCmd = &cobra.Command{
		Use:   "hmac",
		Short: "Compute an HMAC over a file",
		Run:   handler.HmacCmd,
	}
	hmacCmd.Flags().StringP("hash", "", algorithms.NameSha256, "Underlying hash algorithm")
	hmacCmd.Flags().StringP("input-file", "", "", "Path to input file to authenticate")
	hmacCmd.Flags().StringP("key-file", "", "", "Path to the secret key")
	rootCmd.AddCommand(hmacCmd)

	return nil
}
