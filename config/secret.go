package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// SecretFileName is the key file kept in the same directory as the database.
const SecretFileName = "secret_key"

const secretBytes = 32

// ResolveSecret returns the signing secret for sessions and CSRF tokens.
//
// Resolution order:
//  1. the configured SecretKey, when non-empty;
//  2. the key file next to the database;
//  3. a freshly generated random key, persisted to that file when possible.
//
// It never fails. When the key cannot be persisted the process keeps running with a
// volatile key (sessions reset on restart) and the problem is reported to logger.
func ResolveSecret(c AppConfig, logger *zap.Logger) string {
	secret, warn := resolveSecret(c.SecretKey, SecretPath(c))
	if warn != nil && logger != nil {
		logger.Warn("session secret is not persisted; sessions will not survive a restart",
			zap.Error(warn))
	}
	return secret
}

// SecretPath is where the persistent key is stored for the given configuration.
func SecretPath(c AppConfig) string {
	return filepath.Join(filepath.Dir(c.DatabasePath), SecretFileName)
}

// resolveSecret always returns a usable secret; warn is non-nil when a generated
// secret could not be written to path.
func resolveSecret(configured, path string) (secret string, warn error) {
	if s := strings.TrimSpace(configured); s != "" {
		return s, nil
	}

	if b, err := os.ReadFile(path); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
	}

	secret, err := randomHex(secretBytes)
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("generate secret: %v", err))
	}
	return secret, persistSecret(path, secret)
}

func persistSecret(path, secret string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create secret directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret), 0o600); err != nil {
		return fmt.Errorf("write secret file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("restrict secret file: %w", err)
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
