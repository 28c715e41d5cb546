package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	secret := []byte("topsecret")
	payload := []byte(`{"repo":"r","branch":"dev","commit":"abc123"}`)

	sig := SignPayload(secret, payload)
	assert.True(t, strings.HasPrefix(sig, "sha256="))
	assert.True(t, VerifySignature(secret, payload, sig))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	payload := []byte("payload")
	sig := SignPayload([]byte("right"), payload)
	assert.False(t, VerifySignature([]byte("wrong"), payload, sig))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	secret := []byte("s")
	sig := SignPayload(secret, []byte("original"))
	assert.False(t, VerifySignature(secret, []byte("tampered"), sig))
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	secret := []byte("s")
	payload := []byte("p")
	assert.False(t, VerifySignature(secret, payload, ""))
	assert.False(t, VerifySignature(secret, payload, "md5=abcd"))
	assert.False(t, VerifySignature(secret, payload, "sha256=not-hex"))
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
