// Package repomanager provides a concrete RepositoryManager for the
// embedded SQLite store, wiring together repository constructors and
// database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/doveauthd/internal/common"
	"github.com/dmitrijs2005/doveauthd/internal/dbx"
	"github.com/dmitrijs2005/doveauthd/internal/server/migrations"
	"github.com/dmitrijs2005/doveauthd/internal/server/models"
	"github.com/dmitrijs2005/doveauthd/internal/server/repositories/accounts"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// schemaVersion is the newest migration shipped in this binary. A store
// reporting anything higher was written by a newer release and must not
// be served.
const schemaVersion = 1

// Open opens the SQLite store at path with the connection options the
// daemon relies on: WAL journaling, a busy timeout instead of an immediate
// SQLITE_BUSY, and immediate-mode write transactions so racing creators
// queue on the write lock rather than deadlock on a lock upgrade. A path
// that already carries query parameters is used verbatim.
func Open(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(path, "?") {
		dsn = path + "?_txlock=immediate&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStore, err)
	}
	return db, nil
}

// SQLiteRepositoryManager vends SQLite-backed repository implementations
// and exposes the schema lifecycle hooks.
type SQLiteRepositoryManager struct{}

// NewSQLiteRepositoryManager constructs a SQLite-backed RepositoryManager.
func NewSQLiteRepositoryManager() (RepositoryManager, error) {
	return &SQLiteRepositoryManager{}, nil
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLiteRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLiteRepository(db)
}

// GetOrCreate runs the conditional insert and the read-back inside one
// transaction. SQLite serializes the writers, so when several goroutines
// race on a brand-new address exactly one insert lands and every caller
// reads the same row back.
func (m *SQLiteRepositoryManager) GetOrCreate(ctx context.Context, db *sql.DB, candidate *models.Account) (*models.Account, bool, error) {
	var (
		acct    *models.Account
		created bool
	)

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := m.Accounts(tx)

		var err error
		created, err = repo.InsertIfAbsent(ctx, candidate)
		if err != nil {
			return err
		}

		acct, err = repo.Get(ctx, candidate.Address)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return acct, created, nil
}

// Seams for testing goose calls.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseVersionContext = func(ctx context.Context, db *sql.DB) (int64, error) {
		return goose.GetDBVersionContext(ctx, db)
	}
)

// SchemaVersion reads the version marker, creating it at zero on a fresh
// store. Only the version table is touched.
func (m *SQLiteRepositoryManager) SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, err
	}
	v, err := gooseVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrStore, err)
	}
	return v, nil
}

// EnsureSchema verifies the stored version is not ahead of this binary and
// then applies the embedded migrations in order. goose runs each migration
// in its own transaction, so an interrupted run leaves the version marker
// unadvanced.
func (m *SQLiteRepositoryManager) EnsureSchema(ctx context.Context, db *sql.DB) error {
	v, err := m.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if v > schemaVersion {
		return fmt.Errorf("%w: store at version %d, binary supports up to %d",
			common.ErrSchemaTooNew, v, schemaVersion)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStore, err)
	}
	return nil
}
