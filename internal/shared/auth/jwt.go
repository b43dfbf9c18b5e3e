package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken     = errors.New("missing token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrHospitalDenied   = errors.New("hospital not allowed for token")
	ErrKeyNotConfigured = errors.New("jwt key not configured")
)

const RoleAdmin = "admin"

// Claims are the dashboard token claims. Hospitals restricts which hospitals the
// bearer may read; an empty list allows all of them.
type Claims struct {
	SessionID string   `json:"sid"`
	Roles     []string `json:"roles"`
	Hospitals []string `json:"hospitals"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c != nil && slices.ContainsFunc(c.Roles, func(role string) bool { return strings.EqualFold(role, RoleAdmin) })
}

// CanAccessHospital reports whether the bearer may read hospitalID.
func (c *Claims) CanAccessHospital(hospitalID string) bool {
	if c == nil {
		return false
	}
	if len(c.Hospitals) == 0 || c.IsAdmin() {
		return true
	}
	return slices.Contains(c.Hospitals, strings.TrimSpace(hospitalID))
}

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

type JWTValidator struct {
	secret    []byte
	publicKey *rsa.PublicKey
	leeway    time.Duration
	now       func() time.Time
}

// NewJWTValidator accepts RS256 tokens when publicKeyPEM is set and HS256 tokens signed
// with secret otherwise. A malformed PEM is an error.
func NewJWTValidator(secret, publicKeyPEM string) (*JWTValidator, error) {
	v := &JWTValidator{
		secret: []byte(strings.TrimSpace(secret)),
		leeway: 5 * time.Second,
		now:    time.Now,
	}
	if pem := strings.TrimSpace(publicKeyPEM); pem != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(strings.ReplaceAll(pem, `\n`, "\n")))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		v.publicKey = key
	}
	if v.publicKey == nil && len(v.secret) == 0 {
		return nil, ErrKeyNotConfigured
	}
	return v, nil
}

func (v *JWTValidator) keyFunc(t *jwt.Token) (any, error) {
	if v.publicKey != nil {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v, expected RS256", t.Header["alg"])
		}
		return v.publicKey, nil
	}
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return v.secret, nil
}

func (v *JWTValidator) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), claims, v.keyFunc,
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	// Without sid or jti the session stays empty and each connection gets its own id.
	if claims.SessionID == "" {
		claims.SessionID = claims.ID
	}
	return claims, nil
}
