// Package config loads and validates the toml configuration that
// drives the ingest client: tenant identity, environment URL
// templates, token-issuance settings, and polling behavior.
//
// Configuration is always passed down explicitly as a struct; nothing
// in this repository reads process-wide state except the documented
// private-key environment fallbacks in the auth package.
package config
