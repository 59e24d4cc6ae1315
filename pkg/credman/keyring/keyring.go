// Package keyring stores the token-encryption master key in the OS keyring,
// with an encrypted-permissions file fallback for headless hosts.
package keyring

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/zalando/go-keyring"
)

// Keyring identifies the key slot in the OS credential store.
type Keyring struct {
	AppName  string
	KeyField string
}

// seams for tests
var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// NewKeyring returns the default pubdeck key slot.
func NewKeyring() *Keyring {
	return &Keyring{
		AppName:  "pubdeck",
		KeyField: "main",
	}
}

// SetKey mints a fresh 32-byte key, stores it and returns it.
func (k *Keyring) SetKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := randRead(key); err != nil {
		return nil, err
	}
	if err := keyringSet(k.AppName, k.KeyField, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

// GetKey retrieves the stored key.
func (k *Keyring) GetKey() ([]byte, error) {
	keyString, err := keyringGet(k.AppName, k.KeyField)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(keyString)
	if err != nil {
		return nil, err
	}
	return key, nil
}

// DeleteKey removes the stored key.
func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.AppName, k.KeyField)
}

// LoadOrCreate returns the existing key or mints one when absent, falling
// back to the file store when the OS keyring is unavailable.
func (k *Keyring) LoadOrCreate(fallbackPath string) ([]byte, error) {
	if key, err := k.GetKey(); err == nil && len(key) == 32 {
		return key, nil
	} else if err == nil {
		// malformed entry, replace it
		_ = k.DeleteKey()
	}
	key, err := k.SetKey()
	if err == nil {
		return key, nil
	}
	return loadOrCreateFileKey(fallbackPath)
}
