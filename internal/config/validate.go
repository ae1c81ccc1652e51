package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidEnvironments enumerates the deployable service environments.
var ValidEnvironments = []string{"dev", "qa", "prod"}

// MaxExpiration is the longest allowed token lifetime. This ceiling is
// service policy, not a tunable default.
const MaxExpiration = 8 * time.Hour

var validResources = map[string]bool{
	"ingest":      true,
	"content":     true,
	"description": true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateEndpoints(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if c.Upload.Concurrency < 1 {
		return errors.New("upload.concurrency must be at least 1")
	}
	if c.Poll.MaxPings < 1 {
		return errors.New("poll.max_pings must be at least 1")
	}
	if c.Poll.IntervalSeconds < 0 {
		return errors.New("poll.interval_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateIngest() error {
	ns := c.Ingest.Namespace
	if ns == "" || !isAlnum(ns) {
		return fmt.Errorf("ingest.namespace %q must be non-empty and alphanumeric", ns)
	}
	env := c.Ingest.Environment
	for _, valid := range ValidEnvironments {
		if env == valid {
			return nil
		}
	}
	return fmt.Errorf("ingest.environment %q must be one of %s", env, strings.Join(ValidEnvironments, ", "))
}

func (c *Config) validateEndpoints() error {
	required := map[string]string{
		"endpoints.bucket_name":       c.Endpoints.BucketName,
		"endpoints.asset_base_url":    c.Endpoints.AssetBaseURL,
		"endpoints.manifest_base_url": c.Endpoints.ManifestBaseURL,
		"endpoints.ingest_url":        c.Endpoints.IngestURL,
		"endpoints.jobstatus_url":     c.Endpoints.JobStatusURL,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateAuth() error {
	for _, r := range c.Auth.Resources {
		if !validResources[r] {
			return fmt.Errorf("auth.resources contains invalid resource %q", r)
		}
	}
	if c.Auth.ExpirationSeconds <= 0 {
		return errors.New("auth.expiration_seconds must be positive")
	}
	if time.Duration(c.Auth.ExpirationSeconds)*time.Second > MaxExpiration {
		return fmt.Errorf("auth.expiration_seconds exceeds the %s ceiling", MaxExpiration)
	}
	if c.Auth.Timezone != "" {
		if _, err := time.LoadLocation(c.Auth.Timezone); err != nil {
			return fmt.Errorf("auth.timezone: %w", err)
		}
	}
	return nil
}

// ExpandTemplate substitutes tenant placeholders into a URL template.
// The namespace is upper-cased to match delivery-service addressing.
func (c *Config) ExpandTemplate(template string) string {
	replacer := strings.NewReplacer(
		"{account}", c.Ingest.Account,
		"{space}", c.Ingest.Space,
		"{namespace}", strings.ToUpper(c.Ingest.Namespace),
		"{environment}", c.Ingest.Environment,
	)
	return replacer.Replace(template)
}

func isAlnum(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}
