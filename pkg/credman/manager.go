// Package credman manages connected-account credentials: OAuth access
// tokens encrypted at rest with a key held in the OS keyring.
package credman

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pubdeck/pubdeck/pkg/credman/encryption"
	"github.com/pubdeck/pubdeck/pkg/credman/types"
)

// TokenManager persists AccountTokens in a gob file, encrypting the access
// token value with AES-GCM before it touches disk.
type TokenManager struct {
	filePath string
	key      []byte
	mu       sync.Mutex
	tokens   map[string]*types.AccountToken
}

// NewTokenManager loads (or creates) the token file at filePath.
// key must be a 32-byte AES key.
func NewTokenManager(filePath string, key []byte) (*TokenManager, error) {
	tm := &TokenManager{
		filePath: filePath,
		key:      key,
		tokens:   make(map[string]*types.AccountToken),
	}
	if err := tm.load(); err != nil {
		return nil, err
	}
	return tm, nil
}

func (tm *TokenManager) load() error {
	data, err := os.ReadFile(tm.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read tokens: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&tm.tokens); err != nil {
		return fmt.Errorf("decode tokens: %w", err)
	}
	return nil
}

// save writes the token map. Callers hold tm.mu.
func (tm *TokenManager) save() error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(tm.tokens); err != nil {
		return fmt.Errorf("encode tokens: %w", err)
	}
	if err := os.WriteFile(tm.filePath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write tokens: %w", err)
	}
	return nil
}

// SetToken stores the token, encrypting its access token value.
func (tm *TokenManager) SetToken(token types.AccountToken) error {
	encrypted, err := encryption.EncryptValue(token.AccessToken, tm.key)
	if err != nil {
		return err
	}
	token.AccessToken = string(encrypted)
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.tokens[token.Key()] = &token
	return tm.save()
}

// GetToken returns the decrypted token for platform/accountId.
func (tm *TokenManager) GetToken(platform, accountId string) (*types.AccountToken, error) {
	tm.mu.Lock()
	stored, ok := tm.tokens[platform+"/"+accountId]
	tm.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("token not found: %s/%s", platform, accountId)
	}
	decrypted, err := encryption.DecryptValue([]byte(stored.AccessToken), tm.key)
	if err != nil {
		return nil, err
	}
	token := *stored
	token.AccessToken = string(decrypted)
	return &token, nil
}

// DeleteToken removes the token for platform/accountId.
func (tm *TokenManager) DeleteToken(platform, accountId string) error {
	key := platform + "/" + accountId
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if _, ok := tm.tokens[key]; !ok {
		return fmt.Errorf("token not found: %s", key)
	}
	delete(tm.tokens, key)
	return tm.save()
}

// ListAccounts returns the stored tokens with access token values blanked.
func (tm *TokenManager) ListAccounts() []types.AccountToken {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	accounts := make([]types.AccountToken, 0, len(tm.tokens))
	for _, t := range tm.tokens {
		redacted := *t
		redacted.AccessToken = ""
		accounts = append(accounts, redacted)
	}
	return accounts
}

// AccessToken returns a usable decrypted token for the user on the given
// platform. It satisfies the publication manager's token source port.
func (tm *TokenManager) AccessToken(platform, userId string) (string, error) {
	tm.mu.Lock()
	var match *types.AccountToken
	for _, t := range tm.tokens {
		if t.Platform == platform && t.UserId == userId {
			match = t
			break
		}
	}
	tm.mu.Unlock()
	if match == nil {
		return "", fmt.Errorf("no connected %s account for user %s", platform, userId)
	}
	if match.Expired(time.Now()) {
		return "", fmt.Errorf("%s token for user %s has expired", platform, userId)
	}
	decrypted, err := encryption.DecryptValue([]byte(match.AccessToken), tm.key)
	if err != nil {
		return "", err
	}
	return string(decrypted), nil
}
