package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters matching the interactive-login recommendation.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
)

// HashPassword derives an scrypt hash and encodes it as "<hash>.<salt>",
// both hex.
func HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	key, err := scrypt.Key([]byte(password), []byte(saltHex), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hex.EncodeToString(key) + "." + saltHex, nil
}

// ComparePassword checks a supplied password against a stored "<hash>.<salt>"
// value in constant time.
func ComparePassword(supplied, stored string) bool {
	parts := strings.SplitN(stored, ".", 2)
	if len(parts) != 2 {
		return false
	}
	storedKey, err := hex.DecodeString(parts[0])
	if err != nil {
		return false
	}
	key, err := scrypt.Key([]byte(supplied), []byte(parts[1]), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(storedKey, key) == 1
}

// RandomHexAddress returns a wallet-style address: 0x followed by 20 random
// bytes in hex. Used as a stand-in until the registry provisions a real one.
func RandomHexAddress() string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "0x0000000000000000000000000000000000000000"
	}
	return "0x" + hex.EncodeToString(buf)
}
