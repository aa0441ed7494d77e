package commands

import (
	"fmt"

	"github.com/dint-dev/cryptography-sub004/internal/domain/algorithms"
	"github.com/dint-dev/cryptography-sub004/internal/domain/material"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/channelimpl"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/delegation"
	"github.com/dint-dev/cryptography-sub004/internal/infrastructure/purecrypto"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/config"
	"github.com/dint-dev/cryptography-sub004/internal/pkg/logger"
)

func setupLogger() (logger.Logger, error) {
	settings := &config.LoggerSettings{
		LogLevel: "info",
		LogType:  "console",
		FilePath: "",
	}

	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// setupDelegator connects to the native channel daemon when the process has
// one configured. A nil return with nil error means "run everything locally".
func setupDelegator(log logger.Logger) (*delegation.Delegator, error) {
	endpoint := delegation.PlatformEndpoint()
	if endpoint == "" {
		return nil, nil
	}

	settings := config.NewDefaultChannelSettings(endpoint)
	invoker, err := channelimpl.NewWebSocketInvoker(settings, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to channel daemon at %s: %w", endpoint, err)
	}

	delegator, err := delegation.NewDelegator(settings, invoker, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create delegator: %w", err)
	}

	return delegator, nil
}

func pureCipher(name string, keyLength int, log logger.Logger) (algorithms.Cipher, error) {
	switch name {
	case algorithms.NameAesCtr:
		return purecrypto.NewAesCtr(keyLength, log)
	case algorithms.NameAesCbc:
		return purecrypto.NewAesCbc(keyLength, log)
	case algorithms.NameAesGcm:
		return purecrypto.NewAesGcm(keyLength, log)
	case algorithms.NameChacha20:
		return purecrypto.NewChacha20(log)
	case algorithms.NameChacha20Poly1305:
		return purecrypto.NewChacha20Poly1305(log)
	case algorithms.NameXchacha20Poly1305:
		return purecrypto.NewXchacha20Poly1305(log)
	default:
		return nil, fmt.Errorf("unknown cipher algorithm %q", name)
	}
}

// cipherFor builds the selected cipher, wrapped for native delegation when a
// channel daemon is configured.
func cipherFor(name string, keyLength int, log logger.Logger) (algorithms.Cipher, error) {
	pure, err := pureCipher(name, keyLength, log)
	if err != nil {
		return nil, err
	}

	delegator, err := setupDelegator(log)
	if err != nil {
		return nil, err
	}
	if delegator == nil {
		return pure, nil
	}

	return delegation.NewDelegatingCipher(delegator, pure, true)
}

func hashFor(name string) (algorithms.HashAlgorithm, error) {
	switch name {
	case algorithms.NameSha256:
		return purecrypto.NewSha256(), nil
	case algorithms.NameSha384:
		return purecrypto.NewSha384(), nil
	case algorithms.NameSha512:
		return purecrypto.NewSha512(), nil
	case algorithms.NameBlake2b:
		return purecrypto.NewBlake2b(), nil
	case algorithms.NameBlake2s:
		return purecrypto.NewBlake2s(), nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", name)
	}
}

// signerFor builds the selected signature algorithm, wrapped for native
// delegation when a channel daemon is configured.
func signerFor(name, curve string, log logger.Logger) (algorithms.SignatureAlgorithm, error) {
	var (
		pure     algorithms.SignatureAlgorithm
		err      error
		opPrefix string
		kind     material.KeyPairKind
	)
	switch name {
	case algorithms.NameEd25519:
		pure, err = purecrypto.NewEd25519(log)
		opPrefix = "Ed25519"
		kind = material.KeyPairKindOkp
		curve = material.CurveEd25519
	case algorithms.NameEcdsa:
		pure, err = purecrypto.NewEcdsa(curve, log)
		opPrefix = "Ecdsa"
		kind = material.KeyPairKindEC
	default:
		return nil, fmt.Errorf("unknown signature algorithm %q", name)
	}
	if err != nil {
		return nil, err
	}

	delegator, err := setupDelegator(log)
	if err != nil {
		return nil, err
	}
	if delegator == nil {
		return pure, nil
	}

	return delegation.NewDelegatingSignature(delegator, pure, opPrefix, kind, curve)
}
