package models

// User represents an account known to this service.
//
// In hosted mode the account lives in the backend's auth system and only ID
// and Email are populated. In local-only mode the account is synthesized on
// device and PasswordHash holds a bcrypt hash.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the password (local-only mode).
	// Never serialized to the backend.
	PasswordHash string `json:"-"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"created_at"`
}
