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
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

// SignatureCommandHandler encapsulates logic for signing operations via CLI.
// Private keys are stored as the raw private scalar or seed, public keys in
// the flat wire form (raw point for Ed25519, x || y for ECDSA).
type SignatureCommandHandler struct {
	logger logger.Logger
}

// NewSignatureCommandHandler initializes and returns a SignatureCommandHandler
// instance with a configured logger.
func NewSignatureCommandHandler() (*SignatureCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	return &SignatureCommandHandler{logger: loggerInstance}, nil
}

func signerFromFlags(cmd *cobra.Command, log logger.Logger) (algorithms.SignatureAlgorithm, material.KeyPairKind, string, error) {
	algorithm, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid algorithm flag: %w", err)
	}
	curve, err := cmd.Flags().GetString("curve")
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid curve flag: %w", err)
	}

	kind := material.KeyPairKindEC
	if algorithm == algorithms.NameEd25519 {
		kind = material.KeyPairKindOkp
		curve = material.CurveEd25519
	}

	signer, err := signerFor(algorithm, curve, log)
	if err != nil {
		return nil, "", "", err
	}
	return signer, kind, curve, nil
}

// decodePublicKeyFile rebuilds a public key from its flat wire form.
func decodePublicKeyFile(kind material.KeyPairKind, curve string, raw []byte) (*material.PublicKey, error) {
	if kind == material.KeyPairKindOkp {
		return &material.PublicKey{Kind: kind, Curve: curve, X: raw}, nil
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("invalid EC public key encoding: %d bytes", len(raw))
	}
	half := len(raw) / 2
	return &material.PublicKey{Kind: kind, Curve: curve, X: raw[:half], Y: raw[half:]}, nil
}

// GenerateSigningKeysCmd generates a signing key pair and persists it in a selected directory
func (commandHandler *SignatureCommandHandler) GenerateSigningKeysCmd(cmd *cobra.Command, _ []string) {
	keyDir, err := cmd.Flags().GetString("key-dir")
	if err != nil {
		commandHandler.logger.Error("invalid key-dir flag ", err)
		return
	}

	signer, _, _, err := signerFromFlags(cmd, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	keyPair, err := signer.NewKeyPair(context.Background())
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	pub, err := keyPair.Public()
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	encodedPub := pub.X
	if pub.Kind == material.KeyPairKindEC {
		encodedPub = append(append([]byte{}, pub.X...), pub.Y...)
	}

	uniqueID := uuid.New()
	privateFilePath := filepath.Join(keyDir, fmt.Sprintf("%s-private-key.bin", uniqueID))
	if err := os.WriteFile(privateFilePath, keyPair.Private().D, 0600); err != nil {
		commandHandler.logger.Error(err)
		return
	}
	publicFilePath := filepath.Join(keyDir, fmt.Sprintf("%s-public-key.bin", uniqueID))
	if err := os.WriteFile(publicFilePath, encodedPub, 0600); err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Signing keys saved to ", privateFilePath, " and ", publicFilePath)
}

// SignCmd signs a file and writes the raw signature
func (commandHandler *SignatureCommandHandler) SignCmd(cmd *cobra.Command, _ []string) {
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
	privateKeyPath, err := cmd.Flags().GetString("private-key")
	if err != nil {
		commandHandler.logger.Error("invalid private-key flag ", err)
		return
	}
	publicKeyPath, err := cmd.Flags().GetString("public-key")
	if err != nil {
		commandHandler.logger.Error("invalid public-key flag ", err)
		return
	}

	signer, kind, curve, err := signerFromFlags(cmd, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	message, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	privateRaw, err := os.ReadFile(filepath.Clean(privateKeyPath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	publicRaw, err := os.ReadFile(filepath.Clean(publicKeyPath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	pub, err := decodePublicKeyFile(kind, curve, publicRaw)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	keyPair, err := material.NewKeyPair(kind, curve, &material.PrivateKey{D: privateRaw}, pub)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	signature, err := signer.Sign(context.Background(), keyPair, message)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	err = os.WriteFile(outputFilePath, signature.Bytes, 0600)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Signature saved to ", outputFilePath)
}

// VerifyCmd verifies a signature over a file
func (commandHandler *SignatureCommandHandler) VerifyCmd(cmd *cobra.Command, _ []string) {
	inputFilePath, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}
	signatureFilePath, err := cmd.Flags().GetString("signature-file")
	if err != nil {
		commandHandler.logger.Error("invalid signature-file flag ", err)
		return
	}
	publicKeyPath, err := cmd.Flags().GetString("public-key")
	if err != nil {
		commandHandler.logger.Error("invalid public-key flag ", err)
		return
	}

	signer, kind, curve, err := signerFromFlags(cmd, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	message, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	signatureRaw, err := os.ReadFile(filepath.Clean(signatureFilePath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	publicRaw, err := os.ReadFile(filepath.Clean(publicKeyPath))
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	pub, err := decodePublicKeyFile(kind, curve, publicRaw)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	signature, err := material.NewSignature(signatureRaw, pub)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	valid, err := signer.Verify(context.Background(), signature, message)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	if valid {
		commandHandler.logger.Info("Signature is valid")
	} else {
		commandHandler.logger.Warn("Signature is NOT valid")
	}
}

// addSignatureFlags registers the flags every signature command shares
func addSignatureFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("algorithm", "", algorithms.NameEd25519, "Signature algorithm (Ed25519, Ecdsa)")
	cmd.Flags().StringP("curve", "", material.CurveP256, "ECDSA curve (P-256, P-384, P-521)")
}

// InitSignatureCommands registers signing commands
func InitSignatureCommands(rootCmd *cobra.Command) error {
	handler, err := NewSignatureCommandHandler()
	if err != nil {
		return fmt.Errorf("failed to create signature command handler %w", err)
	}

	var generateSigningKeysCmd = &cobra.Command{
		Use:   "generate-signing-keys",
		Short: "Generate a signing key pair",
		Run:   handler.GenerateSigningKeysCmd,
	}
	addSignatureFlags(generateSigningKeysCmd)
	generateSigningKeysCmd.Flags().StringP("key-dir", "", "", "Directory to store the key pair")
	rootCmd.AddCommand(generateSigningKeysCmd)

	var signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Sign a file",
		Run:   handler.SignCmd,
	}
	addSignatureFlags(signCmd)
	signCmd.Flags().StringP("input-file", "", "", "Path to input file to sign")
	signCmd.Flags().StringP("output-file", "", "", "Path to signature output file")
	signCmd.Flags().StringP("private-key", "", "", "Path to the private key")
	signCmd.Flags().StringP("public-key", "", "", "Path to the public key")
	rootCmd.AddCommand(signCmd)

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a signature over a file",
		Run:   handler.VerifyCmd,
	}
	addSignatureFlags(verifyCmd)
	verifyCmd.Flags().StringP("input-file", "", "", "Path to signed input file")
	verifyCmd.Flags().StringP("signature-file", "", "", "Path to the signature")
	verifyCmd.Flags().StringP("public-key", "", "", "Path to the public key")
	rootCmd.AddCommand(verifyCmd)

	return nil
}
