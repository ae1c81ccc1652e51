package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Ingest identifies the tenant context for ingest requests.
type Ingest struct {
	// Account and Space scope the storage bucket; Namespace scopes
	// asset identifiers and delivery URLs.
	Account     string `toml:"account"`
	Space       string `toml:"space"`
	Namespace   string `toml:"namespace"`
	AssetPrefix string `toml:"asset_prefix"`
	Agent       string `toml:"agent"`
	Environment string `toml:"environment"`
}

// Endpoints holds the environment URL templates. Templates may use
// {account}, {space}, {namespace}, and {environment} placeholders.
type Endpoints struct {
	BucketName        string `toml:"bucket_name"`
	AssetBaseURL      string `toml:"asset_base_url"`
	ManifestBaseURL   string `toml:"manifest_base_url"`
	IngestURL         string `toml:"ingest_url"`
	IngestURLPrivate  string `toml:"ingest_url_private"`
	JobStatusURL      string `toml:"jobstatus_url"`
	JobStatusPrivate  string `toml:"jobstatus_url_private"`
	ProxyURL          string `toml:"proxy_url"`
	ProxyRegion       string `toml:"proxy_region"`
	ManifestSchemaURL string `toml:"manifest_schema_url"`
}

// Auth holds token-issuance settings. Exactly one private-key source
// must resolve; resolution order is key string, key path, then the
// IIIF_INGEST_PRIVATE_KEY and IIIF_INGEST_PRIVATE_KEY_PATH
// environment variables.
type Auth struct {
	Issuer            string   `toml:"issuer"`
	KeyID             string   `toml:"key_id"`
	PrivateKey        string   `toml:"private_key"`
	PrivateKeyPath    string   `toml:"private_key_path"`
	Resources         []string `toml:"resources"`
	Algorithm         string   `toml:"algorithm"`
	ExpirationSeconds int      `toml:"expiration_seconds"`
	Timezone          string   `toml:"timezone"`
}

// Upload controls batch upload behavior.
type Upload struct {
	Concurrency int    `toml:"concurrency"`
	PathPrefix  string `toml:"path_prefix"`
}

// Poll controls job-status polling.
type Poll struct {
	MaxPings        int `toml:"max_pings"`
	IntervalSeconds int `toml:"interval_seconds"`
}

// JobLog controls the local sqlite record of submitted jobs.
type JobLog struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration for the ingest client.
type Config struct {
	Ingest    Ingest    `toml:"ingest"`
	Endpoints Endpoints `toml:"endpoints"`
	Auth      Auth      `toml:"auth"`
	Upload    Upload    `toml:"upload"`
	Poll      Poll      `toml:"poll"`
	JobLog    JobLog    `toml:"job_log"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/iiifingest/config.toml")
}

// Load locates, parses, and validates a configuration file. The bool
// result reports whether a file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("iiifingest.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	c.Ingest.Environment = strings.ToLower(strings.TrimSpace(c.Ingest.Environment))
	c.Ingest.Namespace = strings.TrimSpace(c.Ingest.Namespace)
	c.Ingest.Space = strings.TrimSpace(c.Ingest.Space)
	c.Ingest.Account = strings.TrimSpace(c.Ingest.Account)

	if c.JobLog.Path != "" {
		expanded, err := expandPath(c.JobLog.Path)
		if err != nil {
			return err
		}
		c.JobLog.Path = expanded
	}
	if c.Auth.PrivateKeyPath != "" {
		expanded, err := expandPath(c.Auth.PrivateKeyPath)
		if err != nil {
			return err
		}
		c.Auth.PrivateKeyPath = expanded
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
