package accounts

import (
	"context"

	"github.com/dmitrijs2005/doveauthd/internal/server/models"
)

// Repository is the row-level contract of the credential store. Rows are
// written once and never updated: lookups must not touch password_hash.
type Repository interface {
	// Get returns the stored account or common.ErrorNotFound. Pure read.
	Get(ctx context.Context, address string) (*models.Account, error)
	// InsertIfAbsent persists acct unless a row for its address already
	// exists. It reports whether this call created the row. The statement
	// is conditional at the storage layer, so concurrent callers cannot
	// both create.
	InsertIfAbsent(ctx context.Context, acct *models.Account) (bool, error)
}
