package utils

import (
	"crypto/sha256"
	"fmt"
)

// Hex sha256 of data; stored images are named after it so identical uploads
// share one file.
func GetFileHash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
