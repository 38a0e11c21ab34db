package providers

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Signer produces per-request signatures for providers that require them:
// an RSA-OAEP encryption of "{accountID}.{unixTimestamp}" under the
// provider's public key, base64 encoded.
//
// Decoded keys are cached for the process lifetime, keyed by the configured
// key material, with read-through-on-miss semantics.
type Signer struct {
	mu    sync.RWMutex
	keys  map[string]*rsa.PublicKey
	group singleflight.Group
}

// NewSigner creates an empty signer with a lazy key cache.
func NewSigner() *Signer {
	return &Signer{keys: make(map[string]*rsa.PublicKey)}
}

// Signature is the pair of header values attached to a signed request.
type Signature struct {
	Value     string // base64 ciphertext
	Timestamp string // unix seconds, as sent in the timestamp header
}

// Sign encrypts "{accountID}.{ts}" under the configured public key.
// Failure to load key material degrades to "no signature": callers log the
// returned error and send the request unsigned.
func (s *Signer) Sign(cfg SigningConfig, accountID string, now time.Time) (Signature, error) {
	key, err := s.publicKey(cfg.KeyMaterial)
	if err != nil {
		return Signature{}, err
	}

	ts := strconv.FormatInt(now.Unix(), 10)
	plaintext := accountID + "." + ts

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, key, []byte(plaintext), nil)
	if err != nil {
		return Signature{}, fmt.Errorf("oaep encrypt: %w", err)
	}

	return Signature{
		Value:     base64.StdEncoding.EncodeToString(ciphertext),
		Timestamp: ts,
	}, nil
}

func (s *Signer) publicKey(material string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	key, ok := s.keys[material]
	s.mu.RUnlock()
	if ok {
		return key, nil
	}

	// Collapse concurrent loads for the same key material.
	loaded, err, _ := s.group.Do(material, func() (any, error) {
		key, err := loadPublicKey(material)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.keys[material] = key
		s.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return loaded.(*rsa.PublicKey), nil
}

// loadPublicKey accepts inline PEM material or a filesystem path to it.
func loadPublicKey(material string) (*rsa.PublicKey, error) {
	pemBytes := []byte(material)
	if !strings.Contains(material, "-----BEGIN") {
		data, err := os.ReadFile(material)
		if err != nil {
			return nil, fmt.Errorf("read signing key %s: %w", material, err)
		}
		pemBytes = data
	}

	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("signing key is not PEM encoded")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}

	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("signing key is not RSA")
	}
	return rsaKey, nil
}
