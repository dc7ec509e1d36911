package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/doveauthd/internal/common"
	"github.com/dmitrijs2005/doveauthd/internal/cryptox"
	"github.com/dmitrijs2005/doveauthd/internal/dbx"
	"github.com/dmitrijs2005/doveauthd/internal/server/config"
	"github.com/dmitrijs2005/doveauthd/internal/server/models"
	accountsrepo "github.com/dmitrijs2005/doveauthd/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/doveauthd/internal/server/repositories/repomanager"
)

// --- helpers ---

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		MailDomain:   "c1.example.org",
		VmailDir:     "/home/vmail",
		VmailUser:    "vmail",
		NocreateFile: filepath.Join(t.TempDir(), "nocreate"),
	}
}

func newAccountService(t *testing.T, cfg *config.Config) (*AccountService, *sql.DB) {
	t.Helper()

	db, err := repomanager.Open(filepath.Join(t.TempDir(), "accounts.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := &repomanager.SQLiteRepositoryManager{}
	require.NoError(t, m.EnsureSchema(context.Background(), db))

	return NewAccountService(db, m, cfg), db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&n))
	return n
}

// --- lookups ---

func TestLookupPassdb_CreatesOnFirstContact(t *testing.T) {
	cfg := testConfig(t)
	svc, db := newAccountService(t, cfg)
	ctx := context.Background()

	acct, err := svc.LookupPassdb(ctx, "NewUser@C1.Example.Org", "asdf1234")
	require.NoError(t, err)

	assert.Equal(t, "newuser@c1.example.org", acct.Address)
	assert.Equal(t, "/home/vmail/newuser@c1.example.org", acct.HomeDir)
	assert.Equal(t, "vmail", acct.UID)
	assert.Equal(t, "vmail", acct.GID)
	assert.True(t, strings.HasPrefix(acct.PasswordHash, cryptox.SchemeBLFCrypt))
	assert.NoError(t, cryptox.VerifyPassword(acct.PasswordHash, []byte("asdf1234")))

	assert.Equal(t, 1, countRows(t, db))
}

func TestLookupPassdb_Idempotent(t *testing.T) {
	cfg := testConfig(t)
	svc, db := newAccountService(t, cfg)
	ctx := context.Background()

	first, err := svc.LookupPassdb(ctx, "user@c1.example.org", "asdf1234")
	require.NoError(t, err)
	second, err := svc.LookupPassdb(ctx, "user@c1.example.org", "asdf1234")
	require.NoError(t, err)

	assert.Equal(t, first.PasswordHash, second.PasswordHash)
	assert.Equal(t, first.HomeDir, second.HomeDir)
	assert.Equal(t, 1, countRows(t, db))
}

func TestLookupPassdb_NeverOverwritesStoredHash(t *testing.T) {
	cfg := testConfig(t)
	svc, _ := newAccountService(t, cfg)
	ctx := context.Background()

	first, err := svc.LookupPassdb(ctx, "user@c1.example.org", "original")
	require.NoError(t, err)

	// the wrong secret still answers with the stored hash, untouched
	second, err := svc.LookupPassdb(ctx, "user@c1.example.org", "different")
	require.NoError(t, err)

	assert.Equal(t, first.PasswordHash, second.PasswordHash)
	assert.NoError(t, cryptox.VerifyPassword(second.PasswordHash, []byte("original")))
	assert.Error(t, cryptox.VerifyPassword(second.PasswordHash, []byte("different")))
}

func TestLookupPassdb_CreationDisabled(t *testing.T) {
	cfg := testConfig(t)
	svc, db := newAccountService(t, cfg)
	ctx := context.Background()

	existing, err := svc.LookupPassdb(ctx, "kept@c1.example.org", "asdf1234")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfg.NocreateFile, nil, 0o644))

	// a miss is side-effect-free
	_, err = svc.LookupPassdb(ctx, "blocked@c1.example.org", "asdf1234")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 1, countRows(t, db))

	// a hit is unaffected by the flag
	acct, err := svc.LookupPassdb(ctx, "kept@c1.example.org", "asdf1234")
	require.NoError(t, err)
	assert.Equal(t, existing.PasswordHash, acct.PasswordHash)
}

func TestLookupPassdb_SentinelCheckedFresh(t *testing.T) {
	cfg := testConfig(t)
	svc, _ := newAccountService(t, cfg)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(cfg.NocreateFile, nil, 0o644))
	_, err := svc.LookupPassdb(ctx, "late@c1.example.org", "asdf1234")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// removing the flag takes effect on the very next miss
	require.NoError(t, os.Remove(cfg.NocreateFile))
	acct, err := svc.LookupPassdb(ctx, "late@c1.example.org", "asdf1234")
	require.NoError(t, err)
	assert.Equal(t, "late@c1.example.org", acct.Address)
}

func TestLookupUserdb(t *testing.T) {
	cfg := testConfig(t)
	svc, db := newAccountService(t, cfg)
	ctx := context.Background()

	// never creates
	_, err := svc.LookupUserdb(ctx, "absent@c1.example.org")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 0, countRows(t, db))

	_, err = svc.LookupPassdb(ctx, "present@c1.example.org", "asdf1234")
	require.NoError(t, err)

	acct, err := svc.LookupUserdb(ctx, "Present@C1.Example.Org")
	require.NoError(t, err)
	assert.Equal(t, "present@c1.example.org", acct.Address)
	assert.Equal(t, "/home/vmail/present@c1.example.org", acct.HomeDir)
	assert.Equal(t, "vmail", acct.UID)
	assert.Equal(t, "vmail", acct.GID)
}

func TestLookupPassdb_ConcurrentFirstContact(t *testing.T) {
	cfg := testConfig(t)
	svc, db := newAccountService(t, cfg)
	ctx := context.Background()

	const n = 50
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		hashes = map[string]struct{}{}
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// distinct secrets: exactly one becomes canonical
			acct, err := svc.LookupPassdb(ctx, "burst@c1.example.org", fmt.Sprintf("secret-%d", i))
			if err != nil {
				t.Errorf("LookupPassdb: %v", err)
				return
			}
			mu.Lock()
			hashes[acct.PasswordHash] = struct{}{}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, hashes, 1)
	assert.Equal(t, 1, countRows(t, db))
}

// --- random account creation ---

func TestCreateRandomAccount(t *testing.T) {
	cfg := testConfig(t)
	svc, _ := newAccountService(t, cfg)
	ctx := context.Background()

	addr, password, err := svc.CreateRandomAccount(ctx)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(addr, "@c1.example.org"))
	assert.GreaterOrEqual(t, len(password), 10)

	// durably stored before the credentials are handed out
	acct, err := svc.LookupUserdb(ctx, addr)
	require.NoError(t, err)
	assert.NoError(t, cryptox.VerifyPassword(acct.PasswordHash, []byte(password)))

	addr2, password2, err := svc.CreateRandomAccount(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, addr, addr2)
	assert.NotEqual(t, password, password2)
}

// --- error propagation ---

type fakeAccountsRepo struct {
	getOut *models.Account
	getErr error

	created   bool
	insertErr error
}

func (f *fakeAccountsRepo) Get(ctx context.Context, address string) (*models.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeAccountsRepo) InsertIfAbsent(ctx context.Context, acct *models.Account) (bool, error) {
	if f.insertErr != nil {
		return false, f.insertErr
	}
	return f.created, nil
}

type fakeRepoManager struct {
	a *fakeAccountsRepo

	getOrCreateOut     *models.Account
	getOrCreateCreated bool
	getOrCreateErr     error
}

func (m *fakeRepoManager) EnsureSchema(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) SchemaVersion(context.Context, *sql.DB) (int64, error) { return 1, nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository          { return m.a }

func (m *fakeRepoManager) GetOrCreate(ctx context.Context, db *sql.DB, candidate *models.Account) (*models.Account, bool, error) {
	if m.getOrCreateErr != nil {
		return nil, false, m.getOrCreateErr
	}
	out := m.getOrCreateOut
	if out == nil {
		out = candidate
	}
	return out, m.getOrCreateCreated, nil
}

func TestLookupPassdb_StoreErrorPropagates(t *testing.T) {
	cfg := testConfig(t)
	storeErr := fmt.Errorf("%w: disk gone", common.ErrStore)
	m := &fakeRepoManager{a: &fakeAccountsRepo{getErr: storeErr}}

	svc := NewAccountService(nil, m, cfg)

	_, err := svc.LookupPassdb(context.Background(), "user@c1.example.org", "pw")
	assert.ErrorIs(t, err, common.ErrStore)
}

func TestLookupPassdb_CreateStoreErrorPropagates(t *testing.T) {
	cfg := testConfig(t)
	storeErr := fmt.Errorf("%w: disk gone", common.ErrStore)
	m := &fakeRepoManager{
		a:              &fakeAccountsRepo{getErr: common.ErrorNotFound},
		getOrCreateErr: storeErr,
	}

	svc := NewAccountService(nil, m, cfg)

	_, err := svc.LookupPassdb(context.Background(), "user@c1.example.org", "pw")
	assert.ErrorIs(t, err, common.ErrStore)
	assert.False(t, errors.Is(err, common.ErrorNotFound))
}
