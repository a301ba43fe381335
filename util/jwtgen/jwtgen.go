package jwtgen

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Signer issues and verifies ES256 access tokens using a persistent JWK.
type Signer struct {
	key    jwk.Key
	pubKey jwk.Key
	issuer string
	ttl    time.Duration
}

// NewSigner builds a Signer around an existing private JWK.
func NewSigner(key jwk.Key, issuer string, ttl time.Duration) (*Signer, error) {
	pub, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, fmt.Errorf("error deriving public key: %w", err)
	}

	return &Signer{
		key:    key,
		pubKey: pub,
		issuer: issuer,
		ttl:    ttl,
	}, nil
}

// LoadOrCreateKey reads the private JWK at path, generating and
// persisting a new P-256 key on first boot.
func LoadOrCreateKey(path string) (jwk.Key, error) {
	if b, err := os.ReadFile(path); err == nil {
		return jwk.ParseKey(b)
	}

	key, err := GenerateKey(nil)
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("error marshaling key: %w", err)
	}

	if err := os.WriteFile(path, b, 0600); err != nil {
		return nil, fmt.Errorf("error writing jwk to disk: %w", err)
	}

	return key, nil
}

// GenerateKey creates a new P-256 private JWK with a timestamped key ID.
func GenerateKey(kidPrefix *string) (jwk.Key, error) {
	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	key, err := jwk.FromRaw(privKey)
	if err != nil {
		return nil, err
	}

	var kid string
	if kidPrefix != nil {
		kid = fmt.Sprintf("%s-%d", *kidPrefix, time.Now().Unix())
	} else {
		kid = strconv.FormatInt(time.Now().Unix(), 10)
	}

	if err := key.Set(jwk.KeyIDKey, kid); err != nil {
		return nil, err
	}
	return key, nil
}

// IssueToken signs an access token for a user ID.
func (s *Signer) IssueToken(userID int64) (string, error) {
	now := time.Now().UTC()

	tok, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(strconv.FormatInt(userID, 10)).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Build()
	if err != nil {
		return "", err
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.ES256, s.key))
	if err != nil {
		return "", err
	}

	return string(signed), nil
}

// VerifyToken validates a token's signature, issuer and expiry and
// returns the embedded user ID.
func (s *Signer) VerifyToken(token string) (int64, error) {
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.ES256, s.pubKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(tok.Subject(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed subject claim: %w", err)
	}

	return userID, nil
}

type JwksResponseObject struct {
	Keys []jwk.Key `json:"keys"`
}

// Jwks returns the public key set served at /.well-known/jwks.json
func (s *Signer) Jwks() *JwksResponseObject {
	return &JwksResponseObject{
		Keys: []jwk.Key{s.pubKey},
	}
}
