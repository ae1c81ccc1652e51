// Package auth mints the short-lived signed tokens the ingest API
// requires. Credentials are immutable after construction; MakeJWT is
// a pure function of the wall clock and the configured fields.
package auth

import (
	"crypto/rsa"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"iiifingest/internal/config"
	"iiifingest/internal/errs"
	"iiifingest/internal/logging"
)

// Environment fallbacks for credential material. These are the only
// environment variables the repository reads.
const (
	EnvIssuer         = "IIIF_INGEST_ISSUER"
	EnvKeyID          = "IIIF_INGEST_KEY_ID"
	EnvPrivateKey     = "IIIF_INGEST_PRIVATE_KEY"
	EnvPrivateKeyPath = "IIIF_INGEST_PRIVATE_KEY_PATH"
)

var validResources = map[string]bool{
	"ingest":      true,
	"content":     true,
	"description": true,
}

// Credentials holds issuer identity and key material for token
// issuance.
type Credentials struct {
	issuer     string
	keyID      string
	resources  []string
	algorithm  string
	expiration time.Duration
	location   *time.Location
	key        *rsa.PrivateKey
	logger     *slog.Logger
}

// New resolves and validates credentials from configuration. Key
// material resolves in order: explicit key string, explicit key path,
// IIIF_INGEST_PRIVATE_KEY, IIIF_INGEST_PRIVATE_KEY_PATH; if none
// resolves the constructor fails with a configuration error.
func New(cfg config.Auth, logger *slog.Logger) (*Credentials, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = strings.TrimSpace(os.Getenv(EnvIssuer))
		if issuer != "" {
			logger.Info("no issuer configured, using environment variable", logging.String(logging.FieldComponent, "auth"))
		}
	}
	if issuer == "" {
		return nil, errs.Wrap(errs.ErrConfiguration, nil, "auth", "no issuer configured and "+EnvIssuer+" is not set")
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		keyID = strings.TrimSpace(os.Getenv(EnvKeyID))
	}
	if keyID == "" {
		keyID = issuer + "default"
		logger.Warn("no key id configured, using derived default",
			logging.String(logging.FieldComponent, "auth"),
			logging.String("key_id", keyID))
	}

	resources := cfg.Resources
	if len(resources) == 0 {
		resources = []string{"ingest"}
	}
	for _, r := range resources {
		if !validResources[r] {
			return nil, errs.Wrap(errs.ErrValidation, nil, "auth", fmt.Sprintf("invalid resource type %q", r))
		}
	}

	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = "RS256"
	}
	if method := jwt.GetSigningMethod(algorithm); method == nil {
		return nil, errs.Wrap(errs.ErrValidation, nil, "auth", fmt.Sprintf("unsupported signing algorithm %q", algorithm))
	}

	expiration := time.Duration(cfg.ExpirationSeconds) * time.Second
	if expiration <= 0 {
		expiration = time.Hour
	}
	if expiration > config.MaxExpiration {
		return nil, errs.Wrap(errs.ErrValidation, nil, "auth", fmt.Sprintf("expiration %s exceeds the %s ceiling", expiration, config.MaxExpiration))
	}

	timezone := cfg.Timezone
	if timezone == "" {
		timezone = "America/New_York"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, err, "auth", "load timezone")
	}

	keyPEM, err := resolveKeyMaterial(cfg, logger)
	if err != nil {
		return nil, err
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(keyPEM)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, err, "auth", "parse private key")
	}

	return &Credentials{
		issuer:     issuer,
		keyID:      keyID,
		resources:  resources,
		algorithm:  algorithm,
		expiration: expiration,
		location:   location,
		key:        key,
		logger:     logger,
	}, nil
}

func resolveKeyMaterial(cfg config.Auth, logger *slog.Logger) ([]byte, error) {
	envKey := os.Getenv(EnvPrivateKey)
	envPath := os.Getenv(EnvPrivateKeyPath)

	if (envKey != "" || envPath != "") && (cfg.PrivateKey != "" || cfg.PrivateKeyPath != "") {
		logger.Warn("both environment and configured key material present, configured values win",
			logging.String(logging.FieldComponent, "auth"))
	}
	if cfg.PrivateKey != "" && cfg.PrivateKeyPath != "" {
		logger.Warn("both private_key and private_key_path configured, private_key wins",
			logging.String(logging.FieldComponent, "auth"))
	}

	switch {
	case cfg.PrivateKey != "":
		return []byte(cfg.PrivateKey), nil
	case cfg.PrivateKeyPath != "":
		return readKeyFile(cfg.PrivateKeyPath)
	case envKey != "":
		return []byte(envKey), nil
	case envPath != "":
		return readKeyFile(envPath)
	default:
		return nil, errs.Wrap(errs.ErrConfiguration, nil, "auth",
			"no private key material: set auth.private_key, auth.private_key_path, "+EnvPrivateKey+", or "+EnvPrivateKeyPath)
	}
}

func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, err, "auth", "read private key file")
	}
	return data, nil
}

// Issuer returns the configured issuer.
func (c *Credentials) Issuer() string { return c.issuer }

// KeyID returns the resolved key id.
func (c *Credentials) KeyID() string { return c.keyID }
