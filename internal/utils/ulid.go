package utils

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// shortIdLen is the record id width used by the service and image stores.
const shortIdLen = 12

var entropy = ulid.Monotonic(rand.Reader, 0)

// NewUlid returns a fresh lowercase ULID.
func NewUlid() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String())
}

// NewShortId returns the leading characters of a fresh ULID. The prefix
// keeps the timestamp component, so record ids still sort by creation time.
func NewShortId() string {
	return NewUlid()[:shortIdLen]
}
