package service

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/crypto/blake2b"

	"github.com/oboe-board/oboe/shared/domain"
	internal_errors "github.com/oboe-board/oboe/shared/errors"
)

const tripcodeBytes = 8

// Ingest normalizes user submitted text before it reaches the store.
type Ingest struct {
	policy *bluemonday.Policy
	salt   string
}

func NewIngest(tripcodeSalt string) *Ingest {
	return &Ingest{policy: bluemonday.StrictPolicy(), salt: tripcodeSalt}
}

// Poster returns the display name for a submission. An empty name becomes
// AnonymousPoster; "name#secret" becomes "name#<tripcode>".
func (i *Ingest) Poster(raw string) domain.Poster {
	name, secret, hasSecret := strings.Cut(strings.TrimSpace(raw), "#")
	name = strings.TrimSpace(i.policy.Sanitize(name))
	if name == "" {
		name = domain.AnonymousPoster
	}
	if !hasSecret || secret == "" {
		return name
	}
	return name + "#" + i.Tripcode(secret)
}

// Tripcode is a short stable hash of secret. Same secret and salt, same code.
func (i *Ingest) Tripcode(secret string) string {
	sum := blake2b.Sum256([]byte(i.salt + secret))
	return hex.EncodeToString(sum[:tripcodeBytes])
}

// Text strips all markup. A field that ends up empty is rejected.
func (i *Ingest) Text(field, raw string) (string, error) {
	clean := strings.TrimSpace(i.policy.Sanitize(raw))
	if clean == "" {
		return "", &internal_errors.ErrorWithStatusCode{Message: field + " is empty", StatusCode: http.StatusBadRequest}
	}
	return clean, nil
}

// ImagePath keeps the path opaque; only surrounding whitespace is dropped.
func (i *Ingest) ImagePath(raw string) domain.ImagePath {
	return strings.TrimSpace(raw)
}
