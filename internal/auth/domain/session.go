// Package domain defines the admin session model.
package domain

import (
	"time"
)

// AdminSession is an authenticated admin context. It holds the unwrapped data
// key in memory only: nothing about the session is persisted, so a process
// restart logs every admin out.
type AdminSession struct {
	// Token is the opaque bearer token handed to the client.
	Token string
	// DataKey is the unwrapped deployment data key, zeroed on revocation.
	DataKey []byte
	// WrapVersion pins the key-material generation the session was opened
	// against. A password rotation bumps the generation, invalidating the
	// session even if explicit revocation were missed.
	WrapVersion uint
	ExpiresAt   time.Time
}

// Expired reports whether the session lifetime has passed.
func (s *AdminSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
