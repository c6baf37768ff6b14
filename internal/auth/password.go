package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/scrypt"

	"github.com/spec-kit/cms-admin/internal/domain"
)

const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltBytes    = 16
)

// ErrMalformedPasswordHash is returned when a stored scrypt value cannot be parsed.
var ErrMalformedPasswordHash = errors.New("malformed password hash")

// HashPassword derives a scrypt value in the "<hex hash>.<salt>" format.
func HashPassword(password string) (string, error) {
	raw := make([]byte, saltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)
	key, err := deriveKey(password, salt)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key) + "." + salt, nil
}

func deriveKey(password, salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

// SchemeOf returns the account's password scheme. Accounts written before the
// scheme tag existed are classified by the shape of the stored value.
func SchemeOf(user *domain.User) domain.PasswordScheme {
	switch user.PasswordScheme {
	case domain.PasswordSchemeScrypt, domain.PasswordSchemeLegacy:
		return user.PasswordScheme
	}
	if hash, salt, ok := strings.Cut(user.Password, "."); ok && hash != "" && salt != "" {
		return domain.PasswordSchemeScrypt
	}
	return domain.PasswordSchemeLegacy
}

// PasswordVerifier checks a plaintext password against an account.
type PasswordVerifier struct {
	legacyPassword string
	logger         *zap.Logger
}

// NewPasswordVerifier builds a verifier. An empty legacyPassword disables the
// legacy scheme entirely.
func NewPasswordVerifier(legacyPassword string, logger *zap.Logger) *PasswordVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PasswordVerifier{legacyPassword: legacyPassword, logger: logger}
}

// Verify reports whether password matches the account. Errors signal a stored
// value that could not be evaluated, never a mismatch.
func (v *PasswordVerifier) Verify(user *domain.User, password string) (bool, error) {
	switch SchemeOf(user) {
	case domain.PasswordSchemeScrypt:
		return verifyScrypt(user.Password, password)
	case domain.PasswordSchemeLegacy:
		return v.verifyLegacy(user, password), nil
	default:
		return false, fmt.Errorf("unknown password scheme %q", user.PasswordScheme)
	}
}

func verifyScrypt(stored, password string) (bool, error) {
	hashHex, salt, ok := strings.Cut(stored, ".")
	if !ok || hashHex == "" || salt == "" {
		return false, ErrMalformedPasswordHash
	}
	expected, err := hex.DecodeString(hashHex)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedPasswordHash, err)
	}
	derived, err := deriveKey(password, salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(derived, expected) == 1, nil
}

func (v *PasswordVerifier) verifyLegacy(user *domain.User, password string) bool {
	if v.legacyPassword == "" {
		v.logger.Warn("legacy password scheme disabled; account must reset its password",
			zap.String("user_id", user.ID))
		return false
	}
	v.logger.Warn("legacy password scheme used", zap.String("user_id", user.ID))
	return subtle.ConstantTimeCompare([]byte(password), []byte(v.legacyPassword)) == 1
}
