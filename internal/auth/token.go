package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"iiifingest/internal/config"
	"iiifingest/internal/errs"
)

// TokenOptions overrides credential defaults for a single token.
// Zero values fall back to the constructor-time settings.
type TokenOptions struct {
	Resources  []string
	Algorithm  string
	Expiration time.Duration
	Timezone   string
}

// MakeJWT mints a signed token. The header carries the non-standard
// iss/kid/resources claims the ingest service validates in addition
// to typ and alg; iat and exp are wall-clock timestamps taken in the
// configured timezone, which the receiving service checks against its
// own clock in that zone.
func (c *Credentials) MakeJWT(opts TokenOptions) (string, error) {
	return c.makeJWTAt(time.Now(), opts)
}

func (c *Credentials) makeJWTAt(now time.Time, opts TokenOptions) (string, error) {
	resources := opts.Resources
	if len(resources) == 0 {
		resources = c.resources
	}
	for _, r := range resources {
		if !validResources[r] {
			return "", errs.Wrap(errs.ErrValidation, nil, "auth", fmt.Sprintf("invalid resource type %q", r))
		}
	}

	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = c.algorithm
	}
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return "", errs.Wrap(errs.ErrValidation, nil, "auth", fmt.Sprintf("unsupported signing algorithm %q", algorithm))
	}

	expiration := opts.Expiration
	if expiration <= 0 {
		expiration = c.expiration
	}
	if expiration > config.MaxExpiration {
		return "", errs.Wrap(errs.ErrValidation, nil, "auth", fmt.Sprintf("expiration %s exceeds the %s ceiling", expiration, config.MaxExpiration))
	}

	location := c.location
	if opts.Timezone != "" {
		loc, err := time.LoadLocation(opts.Timezone)
		if err != nil {
			return "", errs.Wrap(errs.ErrConfiguration, err, "auth", "load timezone")
		}
		location = loc
	}

	issued := now.In(location)
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"iat": issued.Unix(),
		"exp": issued.Add(expiration).Unix(),
	})
	token.Header["iss"] = c.issuer
	token.Header["kid"] = c.keyID
	token.Header["resources"] = resources

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", errs.Wrap(errs.ErrConfiguration, err, "auth", "sign token")
	}
	return signed, nil
}
