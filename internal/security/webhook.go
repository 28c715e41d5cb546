// Package security authenticates incoming webhook payloads.
package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SignatureHeader is the header carrying the payload signature.
const SignatureHeader = "X-Packci-Signature-256"

const sigPrefix = "sha256="

// SignPayload computes the hex HMAC-SHA256 signature of a payload,
// in "sha256=<hex>" form.
func SignPayload(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return sigPrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a received signature against the payload.
// Comparison is constant-time.
func VerifySignature(secret, payload []byte, signature string) bool {
	if !strings.HasPrefix(signature, sigPrefix) {
		return false
	}
	got, err := hex.DecodeString(strings.TrimPrefix(signature, sigPrefix))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hmac.Equal(got, mac.Sum(nil))
}

// GenerateSecret returns a fresh hex-encoded webhook secret.
func GenerateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
