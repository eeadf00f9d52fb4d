package utils

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// sessionKeyLength gives ~142 bits of randomness over the default nanoid
// alphabet, comfortably above the 128-bit floor for unguessable tokens.
const sessionKeyLength = 24

// NewSessionKey returns an opaque session token. It must only ever travel in
// an HttpOnly cookie.
func NewSessionKey() (string, error) {
	return gonanoid.New(sessionKeyLength)
}

// NewRunID returns an identifier for one cleanup run, used in events and logs.
func NewRunID() string {
	return uuid.New().String()
}
