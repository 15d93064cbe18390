// Copyright (c) 2025 Sharp Sighted Studio.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session token verification and ID utilities.

# Session Tokens

Session tokens are HMAC-SHA256 signed JWTs carrying the user's identity:

	token, err := auth.MintSessionToken(secret, userID, "Rivka", "admin", true, time.Hour)
	claims, err := auth.ParseSessionToken(secret, token)

Claims include the display name, role (user/admin/superAdmin), and whether
the user has completed onboarding. Parsing verifies the signature and
expiry; only HS256 is accepted.

Token issuance belongs to the identity provider — MintSessionToken exists
for that collaborator and for tests. This service only verifies.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(12)  // 24 hex characters

Option ids within an episode use GenerateID(5), short enough for URLs and
unique enough within a single episode's option arrays.

# Slug Sanitation

SanitizeSlug lowercases, strips non-alphanumerics, and collapses runs of
whitespace and dashes:

	auth.SanitizeSlug("Operation: Washi Drop!")  // "operation-washi-drop"
*/
package auth
