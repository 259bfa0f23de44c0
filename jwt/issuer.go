package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the algorithm used by an [Issuer].
type SigningMethod string

const (
	// MethodEd25519 signs with an Ed25519 key pair.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with a shared HMAC secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config holds issuer settings.
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// Issuer mints and verifies access tokens.
type Issuer struct {
	config Config
}

// NewIssuer validates cfg and returns an [Issuer].
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Issuer{config: cfg}, nil
}

// Issue signs an access token for subject.
func (i *Issuer) Issue(subject string) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", errors.New("empty subject")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.config.Issuer,
		},
	}
	if i.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{i.config.Audience}
	}

	signKey, err := i.signKey()
	if err != nil {
		return "", err
	}

	return jwt.NewWithClaims(i.method(), claims).SignedString(signKey)
}

// Parse verifies tokenStr and returns its claims.
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method().Alg()}),
	}
	if i.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.config.Leeway))
	}
	if i.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(i.config.Issuer))
	}
	if i.config.Audience != "" {
		options = append(options, jwt.WithAudience(i.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != i.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return i.verifyKey()
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (i *Issuer) method() jwt.SigningMethod {
	switch i.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (i *Issuer) signKey() (interface{}, error) {
	switch i.config.SigningMethod {
	case MethodHS256:
		return i.config.PrivateKey, nil
	default:
		if len(i.config.PrivateKey) == 0 {
			return nil, errors.New("issuer has no private key")
		}
		return parseEdPrivateKey(i.config.PrivateKey)
	}
}

func (i *Issuer) verifyKey() (interface{}, error) {
	switch i.config.SigningMethod {
	case MethodHS256:
		return i.config.PrivateKey, nil
	default:
		return parseEdPublicKey(i.config.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
