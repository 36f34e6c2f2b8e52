// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxUserIDLength bounds caller-supplied user IDs.
const MaxUserIDLength = 128

// AnonymousPrefix marks user IDs minted by the server.
const AnonymousPrefix = "anon-"

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidUserID   = errors.New("invalid user id")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAdminKey creates an HMAC-based admin key for a poll
// This is deterministic and verifiable
func GenerateAdminKey(pollID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(pollID))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the poll
func ValidateAdminKey(pollID, adminKey, salt string) error {
	expected := GenerateAdminKey(pollID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// NewAnonymousID mints a pseudonymous user ID for a voter without one.
func NewAnonymousID() string {
	return AnonymousPrefix + uuid.NewString()
}

// ValidateUserID accepts opaque IDs of printable, non-space characters.
func ValidateUserID(id string) error {
	if id == "" || len(id) > MaxUserIDLength {
		return fmt.Errorf("%w: length must be 1-%d", ErrInvalidUserID, MaxUserIDLength)
	}
	for _, r := range id {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidUserID, r)
		}
	}
	return nil
}

// HashIP creates a one-way hash of an IP address
// Used as the rate limiter key so raw addresses are never retained
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits)
	return hex.EncodeToString(sum[:8])
}
