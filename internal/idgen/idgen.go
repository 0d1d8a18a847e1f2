// Package idgen provides short, URL-safe identifiers for requests,
// notifications and console instances, backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes distinguish what an identifier was minted for in logs.
const (
	PrefixRequest      = "req-"
	PrefixNotification = "ntf-"
	PrefixOrigin       = "con-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Must is GenerateWithPrefix for callers that cannot act on a failure of the
// system random source; the ID is then prefix+"unknown".
func Must(prefix string) string {
	id, err := GenerateWithPrefix(prefix)
	if err != nil {
		return prefix + "unknown"
	}
	return id
}

// RequestID returns an identifier for the X-Request-ID header.
func RequestID() string { return Must(PrefixRequest) }

// NotificationID returns an identifier for a user-facing notification.
func NotificationID() string { return Must(PrefixNotification) }

// OriginID returns an identifier for one running console, used to ignore
// change events the console published itself.
func OriginID() string { return Must(PrefixOrigin) }
