// Package errs defines the sentinel errors shared across the ingest
// pipeline. Callers classify failures with errors.Is against these
// markers rather than matching message text.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed caller input: bad asset ids, unknown
	// resource names, invalid environments or namespaces.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing or unusable configuration, such as
	// credentials with no resolvable key material.
	ErrConfiguration = errors.New("configuration error")
	// ErrStorage marks upload failures propagated from the object store.
	ErrStorage = errors.New("storage error")
	// ErrUnreadableImage marks files or buffers that could not be parsed
	// as images.
	ErrUnreadableImage = errors.New("unreadable image")
	// ErrProtocol marks unexpected responses from the ingest service:
	// unknown job states or malformed response bodies.
	ErrProtocol = errors.New("protocol error")
)

// Wrap tags err with marker and a contextual detail string built from
// the non-empty parts. A nil err produces a marker-only error.
func Wrap(marker error, err error, parts ...string) error {
	detail := joinParts(parts)
	if err != nil {
		if detail == "" {
			return fmt.Errorf("%w: %w", marker, err)
		}
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	if detail == "" {
		return marker
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func joinParts(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ": ")
}
