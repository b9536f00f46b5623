// Package domain holds the Booker data model: users, books, reviews and the
// values that flow between the store, the services and the API.
package domain

// User is a registered account. Email is stored lowercased and is unique.
type User struct {
	Record
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

// AuthenticatedIdentity is the caller established by verifying a bearer
// token. It is passed explicitly to every operation that authorizes.
type AuthenticatedIdentity struct {
	UserID string
	Name   string
	Email  string
}

// IdentityOf builds the identity for a loaded user.
func IdentityOf(u *User) AuthenticatedIdentity {
	return AuthenticatedIdentity{UserID: u.ID, Name: u.Name, Email: u.Email}
}

// Owns reports whether the identity is the owner referenced by ownerID.
// IDs are compared as opaque strings.
func (a AuthenticatedIdentity) Owns(ownerID string) bool {
	return a.UserID != "" && a.UserID == ownerID
}
