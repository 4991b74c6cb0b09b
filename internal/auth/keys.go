package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// KeyProvider supplies the token signing material. It is built once at
// startup and only read afterwards, so it is safe for concurrent use.
type KeyProvider interface {
	SigningMethod() jwt.SigningMethod
	SigningKey() interface{}
	VerificationKey() interface{}
}

type hmacKeyProvider struct {
	secret []byte
}

// NewHMACKeyProvider signs with HS256 using a configured shared secret.
// Tokens survive restarts as long as the secret does.
func NewHMACKeyProvider(secret string) KeyProvider {
	return &hmacKeyProvider{secret: []byte(secret)}
}

func (p *hmacKeyProvider) SigningMethod() jwt.SigningMethod { return jwt.SigningMethodHS256 }
func (p *hmacKeyProvider) SigningKey() interface{}          { return p.secret }
func (p *hmacKeyProvider) VerificationKey() interface{}     { return p.secret }

type rsaKeyProvider struct {
	private *rsa.PrivateKey
}

// GenerateRSAKeyProvider creates a fresh RS256 key pair. The key is never
// persisted: every token issued before a restart stops validating after it.
func GenerateRSAKeyProvider(bits int) (KeyProvider, error) {
	if bits <= 0 {
		bits = 2048
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return &rsaKeyProvider{private: key}, nil
}

func (p *rsaKeyProvider) SigningMethod() jwt.SigningMethod { return jwt.SigningMethodRS256 }
func (p *rsaKeyProvider) SigningKey() interface{}          { return p.private }
func (p *rsaKeyProvider) VerificationKey() interface{}     { return &p.private.PublicKey }
