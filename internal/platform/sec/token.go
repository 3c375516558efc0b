// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random token carrying byteLength
// bytes of entropy from crypto/rand.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec_token_entropy_failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
