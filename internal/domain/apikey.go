package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Environment constants
const (
	EnvTest = "test"
	EnvLive = "live"
)

const (
	apiKeyLength = 32
	apiKeyBrand  = "chkpt"
	base62Chars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

var validEnvironments = map[string]bool{
	EnvTest: true,
	EnvLive: true,
}

// APIKey authenticates a company against the API. Only the SHA-256 hash of
// the plain key is stored; the prefix exists for display in dashboards.
type APIKey struct {
	ID          uuid.UUID  `json:"id"`
	CompanyID   uuid.UUID  `json:"company_id"`
	Name        string     `json:"name"`
	KeyHash     string     `json:"-"`
	KeyPrefix   string     `json:"key_prefix"`
	Environment string     `json:"environment"`
	IsActive    bool       `json:"is_active"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// GenerateAPIKey creates a new API key and returns (plainKey, hash, prefix).
// Format: chkpt_<env>_<random32>, e.g. chkpt_live_A1b2...
func GenerateAPIKey(env string) (string, string, string, error) {
	if !validEnvironments[env] {
		return "", "", "", errors.New("invalid environment: must be 'test' or 'live'")
	}

	randomPart, err := generateSecureRandomString(apiKeyLength)
	if err != nil {
		return "", "", "", err
	}

	prefix := apiKeyBrand + "_" + env + "_"
	plainKey := prefix + randomPart

	hash := HashAPIKey(plainKey)

	// Display prefix: chkpt_live_A1b2C
	keyPrefix := plainKey[:16]

	return plainKey, hash, keyPrefix, nil
}

// HashAPIKey returns the SHA-256 hex digest of an API key.
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// IsValidFormat reports whether key looks like chkpt_<env>_<random32>.
func IsValidFormat(key string) bool {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 {
		return false
	}

	if parts[0] != apiKeyBrand {
		return false
	}

	if !validEnvironments[parts[1]] {
		return false
	}

	randomPart := parts[2]
	if len(randomPart) != apiKeyLength {
		return false
	}

	for _, char := range randomPart {
		if !strings.ContainsRune(base62Chars, char) {
			return false
		}
	}

	return true
}

// Validate checks the stored fields of an API key record.
func (a *APIKey) Validate() error {
	if a.CompanyID == uuid.Nil {
		return errors.New("company_id cannot be empty")
	}

	if a.Name == "" {
		return errors.New("name cannot be empty")
	}

	if a.KeyHash == "" {
		return errors.New("key_hash cannot be empty")
	}

	if a.KeyPrefix == "" {
		return errors.New("key_prefix cannot be empty")
	}

	if !validEnvironments[a.Environment] {
		return errors.New("invalid environment")
	}

	return nil
}

func generateSecureRandomString(length int) (string, error) {
	result := make([]byte, length)
	base62Len := big.NewInt(int64(len(base62Chars)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, base62Len)
		if err != nil {
			return "", err
		}
		result[i] = base62Chars[num.Int64()]
	}

	return string(result), nil
}
