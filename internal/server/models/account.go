// Package models defines server-side data models persisted in the database.
package models

// Account is the sole persistent entity: one row per mail address.
//
// Only Address and PasswordHash are stored. HomeDir, UID and GID are
// derived from the address and the per-domain naming convention at
// provisioning time; they must come out byte-identical on every lookup
// of the same address.
type Account struct {
	// Address is the lower-cased mail address and the primary key.
	Address string
	// PasswordHash is the account secret in tagged form, e.g.
	// "{BLF-CRYPT}$2a$10$...". The store is the custodian of this value,
	// never its verifier: lookups hand it to the mail system unchanged.
	PasswordHash string

	// HomeDir is the maildir location, <vmail dir>/<address>.
	HomeDir string
	// UID and GID name the storage-owner system account; the same for
	// every row.
	UID string
	GID string
}
