package providers

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKeyPEM(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, string(pemBytes)
}

func TestSignInlinePEMRoundTrip(t *testing.T) {
	key, pemStr := generateKeyPEM(t)
	signer := NewSigner()

	now := time.Unix(1756600000, 0)
	sig, err := signer.Sign(SigningConfig{KeyMaterial: pemStr}, "acct-42", now)
	require.NoError(t, err)
	assert.Equal(t, "1756600000", sig.Timestamp)

	ciphertext, err := base64.StdEncoding.DecodeString(sig.Value)
	require.NoError(t, err)

	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, key, ciphertext, nil)
	require.NoError(t, err)
	assert.Equal(t, "acct-42.1756600000", string(plaintext))
}

func TestSignKeyFromFile(t *testing.T) {
	_, pemStr := generateKeyPEM(t)
	path := filepath.Join(t.TempDir(), "provider.pem")
	require.NoError(t, os.WriteFile(path, []byte(pemStr), 0o600))

	signer := NewSigner()
	sig, err := signer.Sign(SigningConfig{KeyMaterial: path}, "acct", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, sig.Value)

	// Second call hits the key cache even after the file disappears.
	require.NoError(t, os.Remove(path))
	_, err = signer.Sign(SigningConfig{KeyMaterial: path}, "acct", time.Now())
	assert.NoError(t, err)
}

func TestSignBadKeyMaterial(t *testing.T) {
	signer := NewSigner()

	_, err := signer.Sign(SigningConfig{KeyMaterial: "/nonexistent/key.pem"}, "acct", time.Now())
	assert.Error(t, err)

	_, err = signer.Sign(SigningConfig{KeyMaterial: "-----BEGIN PUBLIC KEY-----\nnot base64!\n-----END PUBLIC KEY-----\n"}, "acct", time.Now())
	assert.Error(t, err)
}
