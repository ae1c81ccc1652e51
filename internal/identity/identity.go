// Package identity derives and validates asset identifiers.
//
// Identifiers are the join point between storage keys, manifest canvas
// ids, and ingest request identifiers, so they are restricted to
// alphanumeric characters only. Collisions between concurrent callers
// that pick the same non-random identifier are the caller's
// responsibility; request a random suffix when uniqueness matters.
package identity

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"iiifingest/internal/errs"
)

// TokenLength is the fixed length of the random suffix appended when
// requested. A 128-bit UUID base62-encodes to at most 22 characters.
const TokenLength = 22

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]*$`)

// New composes an asset identifier from prefix + identifier + optional
// random token. The composed value must be strictly alphanumeric;
// separators such as ":" or "-" fail validation immediately, so UUIDs
// must have their hyphens stripped before being passed in.
//
// With withRandomSuffix false the result is a pure function of its
// inputs, which keeps re-uploads addressed to the same asset.
func New(prefix, identifier string, withRandomSuffix bool) (string, error) {
	id := prefix + identifier
	if withRandomSuffix {
		id += RandomToken()
	}
	if err := Validate(id); err != nil {
		return "", err
	}
	return id, nil
}

// Validate reports whether id is usable as an asset identifier.
func Validate(id string) error {
	if !alphanumeric.MatchString(id) {
		return errs.Wrap(errs.ErrValidation, nil, "identity", fmt.Sprintf("asset id %q must be alphanumeric only", id))
	}
	return nil
}

// RandomToken returns a fixed-length base62 token derived from a
// random UUID.
func RandomToken() string {
	u := uuid.New()
	n := new(big.Int).SetBytes(u[:])
	base := big.NewInt(int64(len(base62Alphabet)))
	digit := new(big.Int)

	var b strings.Builder
	b.Grow(TokenLength)
	for n.Sign() > 0 {
		n.DivMod(n, base, digit)
		b.WriteByte(base62Alphabet[digit.Int64()])
	}
	encoded := b.String()

	// Left-pad so every token has the same length regardless of the
	// magnitude of the underlying UUID.
	if len(encoded) < TokenLength {
		encoded += strings.Repeat("0", TokenLength-len(encoded))
	}

	// The digits come out least significant first; reverse them.
	out := []byte(encoded)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
