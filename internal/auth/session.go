// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or claim checks.
var ErrInvalidToken = errors.New("invalid session token")

// Claims binds a bearer to one player seat in one room. Subject is the player id.
type Claims struct {
	RoomID string `json:"room"`
	jwt.RegisteredClaims
}

// PlayerID returns the subject of the token.
func (c *Claims) PlayerID() string {
	return c.Subject
}

// Issuer signs and verifies player session tokens with an ed25519 key pair.
type Issuer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// expiry is the token lifetime; 0 means tokens never expire.
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer generates a fresh ed25519 key pair at runtime.
func NewIssuer(expiry time.Duration) (*Issuer, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Issuer{privateKey: priv, publicKey: pub, expiry: expiry, now: time.Now}, nil
}

// NewIssuerFromPath reads a raw ed25519 private/public key pair from disk.
func NewIssuerFromPath(privatePath, publicPath string, expiry time.Duration) (*Issuer, error) {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ed25519 key files have the wrong size")
	}
	return &Issuer{
		privateKey: ed25519.PrivateKey(privateKeyData),
		publicKey:  ed25519.PublicKey(publicKeyData),
		expiry:     expiry,
		now:        time.Now,
	}, nil
}

// Issue creates a signed token for playerID seated in roomID.
func (is *Issuer) Issue(playerID, roomID string) (string, error) {
	now := is.now()
	claims := Claims{
		RoomID: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  playerID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if is.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(is.expiry))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(is.privateKey)
}

// Verify checks tokenString and returns its claims.
func (is *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return is.publicKey, nil
	}, jwt.WithTimeFunc(is.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.RoomID == "" {
		return nil, fmt.Errorf("%w: missing player or room", ErrInvalidToken)
	}
	return claims, nil
}
