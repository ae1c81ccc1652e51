package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"iiifingest/internal/config"
	"iiifingest/internal/errs"
	"iiifingest/internal/testsupport"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvIssuer, EnvKeyID, EnvPrivateKey, EnvPrivateKeyPath} {
		t.Setenv(key, "")
	}
}

func testAuthConfig(t *testing.T) config.Auth {
	return config.Auth{
		Issuer:            "atissuer",
		KeyID:             "atissuerdefault",
		PrivateKey:        testsupport.RSAPrivateKeyPEM(t),
		Resources:         []string{"ingest"},
		Algorithm:         "RS256",
		ExpirationSeconds: 3600,
		Timezone:          "America/New_York",
	}
}

func TestMakeJWTHeaderAndClaims(t *testing.T) {
	clearEnv(t)
	cfg := testAuthConfig(t)
	creds, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	signed, err := creds.MakeJWT(TokenOptions{})
	if err != nil {
		t.Fatalf("MakeJWT returned error: %v", err)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKey))
	if err != nil {
		t.Fatalf("parse key: %v", err)
	}
	token, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		return key.Public(), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !token.Valid {
		t.Fatal("token did not verify")
	}

	if token.Header["iss"] != "atissuer" {
		t.Fatalf("header iss = %v", token.Header["iss"])
	}
	if token.Header["kid"] != "atissuerdefault" {
		t.Fatalf("header kid = %v", token.Header["kid"])
	}
	resources, ok := token.Header["resources"].([]any)
	if !ok || len(resources) != 1 || resources[0] != "ingest" {
		t.Fatalf("header resources = %v", token.Header["resources"])
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type %T", token.Claims)
	}
	if _, present := claims["iat"]; !present {
		t.Fatal("iat claim missing")
	}
	if _, present := claims["exp"]; !present {
		t.Fatal("exp claim missing")
	}
}

func TestMakeJWTExpirationWindow(t *testing.T) {
	clearEnv(t)
	creds, err := New(testAuthConfig(t), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	signed, err := creds.makeJWTAt(now, TokenOptions{})
	if err != nil {
		t.Fatalf("makeJWTAt returned error: %v", err)
	}

	claims := decodeClaims(t, signed)
	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	if iat != now.Unix() {
		t.Fatalf("iat = %d, want %d", iat, now.Unix())
	}
	if exp-iat != 3600 {
		t.Fatalf("exp-iat = %d, want 3600", exp-iat)
	}
}

func TestMakeJWTPerTokenOverrides(t *testing.T) {
	clearEnv(t)
	creds, err := New(testAuthConfig(t), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	now := time.Now()
	signed, err := creds.makeJWTAt(now, TokenOptions{Expiration: 2 * time.Hour})
	if err != nil {
		t.Fatalf("makeJWTAt returned error: %v", err)
	}
	claims := decodeClaims(t, signed)
	if diff := int64(claims["exp"].(float64)) - int64(claims["iat"].(float64)); diff != 7200 {
		t.Fatalf("exp-iat = %d, want 7200", diff)
	}

	if _, err := creds.MakeJWT(TokenOptions{Resources: []string{"bogus"}}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bogus resource error = %v", err)
	}
	if _, err := creds.MakeJWT(TokenOptions{Expiration: 9 * time.Hour}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("over-ceiling expiration error = %v", err)
	}
}

func TestNewValidation(t *testing.T) {
	clearEnv(t)

	cfg := testAuthConfig(t)
	cfg.Resources = []string{"admin"}
	if _, err := New(cfg, nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("invalid resource error = %v", err)
	}

	cfg = testAuthConfig(t)
	cfg.ExpirationSeconds = 9 * 3600
	if _, err := New(cfg, nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("over-ceiling expiration error = %v", err)
	}

	cfg = testAuthConfig(t)
	cfg.Algorithm = "XX999"
	if _, err := New(cfg, nil); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("bad algorithm error = %v", err)
	}

	cfg = testAuthConfig(t)
	cfg.Issuer = ""
	if _, err := New(cfg, nil); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("missing issuer error = %v", err)
	}

	cfg = testAuthConfig(t)
	cfg.PrivateKey = "not a pem block"
	if _, err := New(cfg, nil); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("bad key material error = %v", err)
	}
}

func TestNewResolvesKeyFromEnvironment(t *testing.T) {
	clearEnv(t)
	cfg := testAuthConfig(t)
	pem := cfg.PrivateKey
	cfg.PrivateKey = ""

	t.Setenv(EnvPrivateKey, pem)
	if _, err := New(cfg, nil); err != nil {
		t.Fatalf("env key string: %v", err)
	}

	t.Setenv(EnvPrivateKey, "")
	keyPath := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(keyPath, []byte(pem), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	t.Setenv(EnvPrivateKeyPath, keyPath)
	if _, err := New(cfg, nil); err != nil {
		t.Fatalf("env key path: %v", err)
	}

	t.Setenv(EnvPrivateKeyPath, "")
	if _, err := New(cfg, nil); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("no key material error = %v", err)
	}
}

func TestNewConfiguredKeyWinsOverEnvironment(t *testing.T) {
	clearEnv(t)
	cfg := testAuthConfig(t)
	t.Setenv(EnvPrivateKey, "garbage that would fail to parse")

	// The configured key takes precedence, so the garbage env value
	// must never be read.
	if _, err := New(cfg, nil); err != nil {
		t.Fatalf("New returned error: %v", err)
	}
}

func TestNewDerivesDefaultKeyID(t *testing.T) {
	clearEnv(t)
	cfg := testAuthConfig(t)
	cfg.KeyID = ""

	creds, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if creds.KeyID() != "atissuerdefault" {
		t.Fatalf("derived key id = %q", creds.KeyID())
	}
	if creds.Issuer() != "atissuer" {
		t.Fatalf("issuer = %q", creds.Issuer())
	}
}

func decodeClaims(t *testing.T, signed string) jwt.MapClaims {
	t.Helper()
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(signed, jwt.MapClaims{})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type %T", token.Claims)
	}
	return claims
}
