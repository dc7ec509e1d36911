package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/doveauthd/internal/common"
	"github.com/dmitrijs2005/doveauthd/internal/dbx"
	"github.com/dmitrijs2005/doveauthd/internal/server/models"
)

// SQLiteRepository runs account queries against a DBTX, so the same
// methods work on the bare handle and inside a transaction.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, address string) (*models.Account, error) {
	query :=
		`SELECT address, password_hash FROM accounts
		 WHERE address = ?
		 `

	acct := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, address).Scan(&acct.Address, &acct.PasswordHash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStore, err)
	}

	return acct, nil
}

func (r *SQLiteRepository) InsertIfAbsent(ctx context.Context, acct *models.Account) (bool, error) {
	query :=
		`INSERT INTO accounts (address, password_hash)
		 VALUES (?, ?)
		 ON CONFLICT(address) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, acct.Address, acct.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStore, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStore, err)
	}

	return n == 1, nil
}
