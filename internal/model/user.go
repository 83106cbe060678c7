// Package model defines the data structures used throughout the application.
// Each type is a plain value whose JSON tags give its persisted shape.
package model

// User represents a registered account.
//
// The JSON shape is the persisted shape: the "users" key holds an array of
// these objects, and "currentUser" holds a single one.
//
// PASSWORD FIELD:
// The password is stored and compared as submitted. Credential hardening is
// out of scope for this application; the field exists so login can match an
// email/password pair against the stored collection.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`    // lower-cased and trimmed at registration
	Password string `json:"password"` // plaintext
}
