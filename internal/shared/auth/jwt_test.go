package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "super-secret"

func signHS256(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestJWTValidatorHS256(t *testing.T) {
	t.Parallel()

	v, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exp := time.Now().Add(time.Hour)
	token := signHS256(t, Claims{
		Roles:            []string{"viewer"},
		Hospitals:        []string{"h-1"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(exp)},
	})

	claims, err := v.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.SessionID != "" {
		t.Fatalf("token without sid or jti should leave the session empty, got %q", claims.SessionID)
	}
	if !claims.CanAccessHospital("h-1") || claims.CanAccessHospital("h-2") {
		t.Fatalf("hospital restriction not applied: %+v", claims.Hospitals)
	}
}

func TestJWTValidatorRejects(t *testing.T) {
	t.Parallel()

	v, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expired := signHS256(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	noSubject := signHS256(t, Claims{SessionID: "s-1"})
	wrongKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}}).SignedString([]byte("other"))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "empty", token: "  ", want: ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", want: ErrInvalidToken},
		{name: "expired", token: expired, want: ErrInvalidToken},
		{name: "missing subject", token: noSubject, want: ErrInvalidToken},
		{name: "wrong key", token: wrongKey, want: ErrInvalidToken},
	}
	for _, tc := range tests {
		if _, err := v.Validate(tc.token); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestJWTValidatorRS256(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	publicPEM := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	v, err := NewJWTValidator("", publicPEM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2", ID: "jti-1"},
	}).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	claims, err := v.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.SessionID != "jti-1" {
		t.Fatalf("session id should fall back to jti, got %q", claims.SessionID)
	}

	if _, err := v.Validate(signHS256(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}})); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("HS256 token should be rejected by an RS256 validator, got %v", err)
	}
}

func TestNewJWTValidatorConfigErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTValidator("", ""); !errors.Is(err, ErrKeyNotConfigured) {
		t.Fatalf("expected ErrKeyNotConfigured, got %v", err)
	}
	if _, err := NewJWTValidator("secret", "-----BEGIN PUBLIC KEY-----\nbroken\n-----END PUBLIC KEY-----"); err == nil {
		t.Fatal("malformed PEM should fail")
	}
}

func TestCanAccessHospitalAdmin(t *testing.T) {
	t.Parallel()

	claims := &Claims{Roles: []string{"ADMIN"}, Hospitals: []string{"h-1"}}
	if !claims.CanAccessHospital("h-9") {
		t.Fatal("admin should access every hospital")
	}
	if (*Claims)(nil).CanAccessHospital("h-1") {
		t.Fatal("nil claims should deny")
	}
	if !(&Claims{}).CanAccessHospital("h-3") {
		t.Fatal("claims without hospitals should allow all")
	}
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		url    string
		want   string
	}{
		{name: "bearer header", header: "Bearer abc", url: "/", want: "abc"},
		{name: "lowercase bearer", header: "bearer  def ", url: "/", want: "def"},
		{name: "basic ignored", header: "Basic xyz", url: "/?token=q", want: "q"},
		{name: "query", url: "/?token=%20qq%20", want: "qq"},
		{name: "none", url: "/", want: ""},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, tc.url, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := ExtractToken(req, ""); got != tc.want {
			t.Fatalf("%s: ExtractToken = %q, want %q", tc.name, got, tc.want)
		}
	}
	if ExtractToken(nil, "token") != "" {
		t.Fatal("nil request should yield no token")
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	v, err := NewJWTValidator(testSecret, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		return c.String(http.StatusOK, ClaimsFrom(c).Subject)
	}, Middleware(v))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+signHS256(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-3"}}))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "user-3" {
		t.Fatalf("valid token: status=%d body=%q", rec.Code, rec.Body.String())
	}
}
