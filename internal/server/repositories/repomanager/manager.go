package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/doveauthd/internal/dbx"
	"github.com/dmitrijs2005/doveauthd/internal/server/models"
	"github.com/dmitrijs2005/doveauthd/internal/server/repositories/accounts"
)

// RepositoryManager owns the schema lifecycle of the credential store and
// vends repositories bound to a handle or transaction.
type RepositoryManager interface {
	// EnsureSchema checks the stored schema version and applies pending
	// migrations. A store written by a newer binary fails with
	// common.ErrSchemaTooNew before any other query runs.
	EnsureSchema(ctx context.Context, db *sql.DB) error
	// SchemaVersion reports the version marker without touching the rest
	// of the schema.
	SchemaVersion(ctx context.Context, db *sql.DB) (int64, error)
	// GetOrCreate persists candidate unless a row for its address already
	// exists and returns the row that holds afterwards, this caller's or
	// a racing creator's. The conditional insert and the read-back share
	// one transaction; created reports whether this call's insert won.
	// Callers needing first-contact creation go through this, not through
	// a read followed by an insert.
	GetOrCreate(ctx context.Context, db *sql.DB, candidate *models.Account) (acct *models.Account, created bool, err error)
	Accounts(db dbx.DBTX) accounts.Repository
}
