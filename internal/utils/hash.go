package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex encoded sha256 of data.
func Hash(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
