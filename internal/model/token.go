package model

import "time"

// AccessToken models an entry in the `access_tokens` table. Each token
// belongs to a user and identifies one session. The plain token is never
// stored; only its SHA-256 hash. A row exists exactly as long as the token
// is valid: logout deletes the row and deleting the user cascades over it.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	CreatedAt – timestamp of issuance.
type AccessToken struct {
	ID        uint64    // access_tokens.id
	UserID    uint64    // access_tokens.user_id
	TokenHash string    // access_tokens.token_hash
	CreatedAt time.Time // access_tokens.created_at
}
