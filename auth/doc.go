// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides ID generation and admin key utilities.

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(pollID, salt)
	err := auth.ValidateAdminKey(pollID, adminKey, salt)

The key is URL-safe base64 encoded without padding, so it can be validated
without storing it.

# User IDs

Voters are identified by an opaque X-User-ID supplied by the client's
identity provider. Voters without one get a pseudonymous ID:

	id := auth.NewAnonymousID() // "anon-" + UUIDv4

ValidateUserID rejects empty, oversized, or non-printable IDs.

# ID Generation

Random hex IDs for polls and options:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

The rate limiter keys clients by HashIP(ip, salt), the first 8 bytes
(16 hex chars) of HMAC-SHA256.
*/
package auth
