package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContentKey identifies an analysis by the pipeline that produced it and the
// exact input text.
func ContentKey(fingerprint, text string) string {
	raw := fmt.Sprintf("%s:%s", fingerprint, text)
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:])
}
