package models

// User is the authenticated-user handle the core consumes. Credentials stay
// inside the identity provider.
type User struct {
	ID       string `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	Verified bool   `json:"verified" db:"verified"`
}
