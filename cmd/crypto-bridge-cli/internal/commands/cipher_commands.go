package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/compose"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/purecrypto"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// CipherCommandHandler encapsulates logic for symmetric encryption via CLI.
// Encrypted files carry the flat wire form nonce || cipherText || mac.
type CipherCommandHandler struct {
	logger logger.Logger
}

// NewCipherCommandHandler initializes and returns a CipherCommandHandler
// instance with a configured logger.
func NewCipherCommandHandler() (*CipherCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	return &CipherCommandHandler{logger: loggerInstance}, nil
}

// cipherFromFlags builds the cipher the shared flags select, wrapping
// unauthenticated ciphers with an HMAC when --hmac-hash is given.
func (commandHandler *CipherCommandHandler) cipherFromFlags(cmd *cobra.Command) (algorithms.Cipher, error) {
	algorithm, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		return nil, fmt.Errorf("invalid algorithm flag: %w", err)
	}
	keySize, err := cmd.Flags().GetInt("key-size")
	if err != nil {
		return nil, fmt.Errorf("invalid key-size flag: %w", err)
	}
	hmacHash, err := cmd.Flags().GetString("hmac-hash")
	if err != nil {
		return nil, fmt.Errorf("invalid hmac-hash flag: %w", err)
	}

	cipher, err := cipherFor(algorithm, keySize, commandHandler.logger)
	if err != nil {
		return nil, err
	}

	if hmacHash == "" {
		return cipher, nil
	}

	hash, err := hashFor(hmacHash)
	if err != nil {
		return nil, err
	}
	mac, err := purecrypto.NewHmac(hash)
	if err != nil {
		return nil, err
	}
	return compose.NewAuthenticatedCipher(cipher, mac)
}

// GenerateKeyCmd generates a symmetric key and persists it in a selected directory
func (commandHandler *CipherCommandHandler) GenerateKeyCmd(cmd *cobra.Command, _ []string) {
	keyDir, err := cmd.Flags().GetString("key-dir")
	if err != nil {
		commandHandler.logger.Error("invalid key-dir flag ", err)
		return
	}

	cipher, err := commandHandler.cipherFromFlags(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	secretKey, err := cipher.NewSecretKey(context.Background())
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	raw, err := secretKey.Extract(context.Background())
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	uniqueID := uuid.New()
	keyFilePath := filepath.Join(keyDir, fmt.Sprintf("%s-symmetric-key.bin", uniqueID))
	err = os.WriteFile(keyFilePath, raw, 0600)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	commandHandler.logger.Info("Symmetric key saved to ", keyFilePath)
}

// EncryptCmd encrypts a file and writes the concatenated secret box
func (commandHandler *CipherCommandHandler) EncryptCmd(cmd *cobra.Command, _ []string) {
	inputFilePath, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}
	outputFilePath, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag ", err)
		return
	}
	keyFilePath, err := cmd.Flags().GetString("key-file")
	if err != nil {
		commandHandler.logger.Error("invalid key-file flag ", err)
		return
	}
	aad, err := cmd.Flags().GetBytesHex("aad")
	if err != nil {
		commandHandler.logger.Error("invalid aad flag ", err)
		return
	}

	cipher, err := commandHandler.cipherFromFlags(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	clearText, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	keyBytes, err := os.ReadFile(filepath.Clean(keyFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	box, err := cipher.Encrypt(context.Background(), material.NewSecretKey(keyBytes), clearText, nil, aad)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	err = os.WriteFile(outputFilePath, box.Concat(), 0600)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Encrypted data saved to ", outputFilePath)
}

// DecryptCmd decrypts a concatenated secret box file
func (commandHandler *CipherCommandHandler) DecryptCmd(cmd *cobra.Command, _ []string) {
	inputFilePath, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}
	outputFilePath, err := cmd.Flags().GetString("output-file")
	if err != nil {
		commandHandler.logger.Error("invalid output-file flag ", err)
		return
	}
	keyFilePath, err := cmd.Flags().GetString("key-file")
	if err != nil {
		commandHandler.logger.Error("invalid key-file flag ", err)
		return
	}
	aad, err := cmd.Flags().GetBytesHex("aad")
	if err != nil {
		commandHandler.logger.Error("invalid aad flag ", err)
		return
	}

	cipher, err := commandHandler.cipherFromFlags(cmd)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	data, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	box, err := material.SecretBoxFromConcat(data, cipher.NonceLength(), cipher.MacLength())
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	keyBytes, err := os.ReadFile(filepath.Clean(keyFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	clearText, err := cipher.Decrypt(context.Background(), material.NewSecretKey(keyBytes), box, aad)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	err = os.WriteFile(outputFilePath, clearText, 0600)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Decrypted data saved to ", outputFilePath)
}

// addCipherFlags registers the flags every cipher command shares
func addCipherFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("algorithm", "", algorithms.NameAesGcm, "Cipher algorithm (Aes.ctr, Aes.cbc, Aes.gcm, Chacha20, Chacha20.poly1305Aead, Xchacha20.poly1305Aead)")
	cmd.Flags().IntP("key-size", "", 32, "Key size in bytes for AES algorithms (16, 24 or 32)")
	cmd.Flags().StringP("hmac-hash", "", "", "Wrap an unauthenticated cipher with HMAC over this hash (e.g. Sha256)")
}

// InitCipherCommands registers symmetric cipher commands
func InitCipherCommands(rootCmd *cobra.Command) error {
	handler, err := NewCipherCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create cipher command handler %w", err)
	}

	var generateKeyCmd = &cobra.Command{
		Use:   "generate-key",
		Short: "Generate a symmetric key",
		Run:   handler.GenerateKeyCmd,
	}
	addCipherFlags(generateKeyCmd)
	generateKeyCmd.Flags().StringP("key-dir", "", "", "Directory to store the encryption key")
	rootCmd.AddCommand(generateKeyCmd)

	var encryptCmd = &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a file",
		Run:   handler.EncryptCmd,
	}
	addCipherFlags(encryptCmd)
	encryptCmd.Flags().StringP("input-file", "", "", "Path to input file that needs to be encrypted")
	encryptCmd.Flags().StringP("output-file", "", "", "Path to encrypted output file")
	encryptCmd.Flags().StringP("key-file", "", "", "Path to the symmetric key")
	encryptCmd.Flags().BytesHexP("aad", "", nil, "Associated data in hex, authenticated but not encrypted")
	rootCmd.AddCommand(encryptCmd)

	var decryptCmd = &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt a file",
		Run:   handler.DecryptCmd,
	}
	addCipherFlags(decryptCmd)
	decryptCmd.Flags().StringP("input-file", "", "", "Input encrypted file path")
	decryptCmd.Flags().StringP("output-file", "", "", "Path to decrypted output file")
	decryptCmd.Flags().StringP("key-file", "", "", "Path to the symmetric key")
	decryptCmd.Flags().BytesHexP("aad", "", nil, "Associated data in hex, authenticated but not encrypted")
	rootCmd.AddCommand(decryptCmd)

	return nil
}
