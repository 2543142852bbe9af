package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const signaturePrefix = "sha256="

// Sign computes the delivery signature header value for body keyed by the
// webhook secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received header value against the body and
// secret. Receivers use it for tamper detection.
func VerifySignature(secret string, body []byte, header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return fmt.Errorf("webhooks: signature header is required")
	}
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("webhooks: signature secret is required")
	}
	encoded := strings.TrimPrefix(header, signaturePrefix)
	decoded, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return fmt.Errorf("webhooks: decode hex signature: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	if subtle.ConstantTimeCompare(decoded, mac.Sum(nil)) != 1 {
		return fmt.Errorf("webhooks: signature verification failed")
	}
	return nil
}
