package keyring

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// loadOrCreateFileKey reads a hex-encoded key from path, minting and writing
// one with 0600 permissions when the file does not exist. Used when the OS
// keyring is unavailable (headless servers, containers).
func loadOrCreateFileKey(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("keyring unavailable and no fallback key path configured")
	}
	if data, err := os.ReadFile(path); err == nil {
		key, decErr := hex.DecodeString(strings.TrimSpace(string(data)))
		if decErr != nil {
			return nil, fmt.Errorf("decode fallback key: %w", decErr)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("fallback key has wrong length %d", len(key))
		}
		return key, nil
	}
	key := make([]byte, 32)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("write fallback key: %w", err)
	}
	return key, nil
}
