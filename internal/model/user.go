package model

import "time"

// Roles assignable to a user. Registration always produces a member;
// admins are provisioned out of band (seed data or manual SQL), the API
// never promotes anyone.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents an application user record as stored in the `users`
// table. The password is persisted only as a bcrypt hash; handlers define
// separate response types so the hash never reaches a client.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique email address, stored lower-cased.
//	PasswordHash – bcrypt hashed password.
//	Role         – "admin" or "member".
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
