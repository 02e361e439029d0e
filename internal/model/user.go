// Package model defines the records stored by the catalog.
//
// These are storage shapes, not API shapes: what clients see is built by
// the serializer package, so fields like PasswordHash never leak.
package model

// User is an account that owns cats.
type User struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	PasswordHash string `db:"password_hash"`
}
