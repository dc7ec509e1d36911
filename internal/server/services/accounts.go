// Package services implements the lookup and provisioning operations the
// dict handler and the provisioning endpoint call into.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/doveauthd/internal/common"
	"github.com/dmitrijs2005/doveauthd/internal/filex"
	"github.com/dmitrijs2005/doveauthd/internal/server/config"
	"github.com/dmitrijs2005/doveauthd/internal/server/models"
	"github.com/dmitrijs2005/doveauthd/internal/server/provision"
	"github.com/dmitrijs2005/doveauthd/internal/server/repositories/repomanager"
)

// AccountService answers address lookups against the credential store,
// creating accounts on first contact when allowed.
type AccountService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	provisioner  *provision.Provisioner
	nocreateFile string
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:           db,
		repomanager:  m,
		provisioner:  provision.New(cfg),
		nocreateFile: cfg.NocreateFile,
	}
}

// LookupPassdb returns the credential record for address, creating the
// account with the presented secret on first contact.
//
// The presented secret is never compared against a stored hash here, and a
// stored hash is never replaced: the mail system does its own comparison
// against the returned value. On a miss with the creation-disabled sentinel
// file present the lookup returns common.ErrorNotFound without touching
// the store.
func (s *AccountService) LookupPassdb(ctx context.Context, address, secret string) (*models.Account, error) {
	address = strings.ToLower(address)

	repo := s.repomanager.Accounts(s.db)

	acct, err := repo.Get(ctx, address)
	switch {
	case err == nil:
		// hit: hand the stored hash back unchanged
	case errors.Is(err, common.ErrorNotFound):
		acct, err = s.createOnMiss(ctx, address, secret)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.provisioner.FillIdentity(acct)
	return acct, nil
}

// createOnMiss provisions a candidate for address and persists it through
// the store's atomic primitive. When several first-contact logins race,
// every one of them ends up with the single row that won.
func (s *AccountService) createOnMiss(ctx context.Context, address, secret string) (*models.Account, error) {
	// checked fresh on every miss so flipping the flag needs no restart
	if filex.Exists(s.nocreateFile) {
		return nil, common.ErrorNotFound
	}

	candidate, err := s.provisioner.NewAccount(address, secret)
	if err != nil {
		return nil, err
	}

	acct, _, err := s.repomanager.GetOrCreate(ctx, s.db, candidate)
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// LookupUserdb returns the record for address without ever creating one.
// Delivery-time lookups go through here.
func (s *AccountService) LookupUserdb(ctx context.Context, address string) (*models.Account, error) {
	address = strings.ToLower(address)

	repo := s.repomanager.Accounts(s.db)

	acct, err := repo.Get(ctx, address)
	if err != nil {
		return nil, err
	}

	s.provisioner.FillIdentity(acct)
	return acct, nil
}

// CreateRandomAccount mints a random address under the configured mail
// domain with a random password, persists it, and returns the pair. The
// loop retries on an address collision, so the returned credentials always
// belong to a row this call created.
func (s *AccountService) CreateRandomAccount(ctx context.Context) (string, string, error) {
	for {
		addr, password, err := s.provisioner.NewRandomCredentials()
		if err != nil {
			return "", "", err
		}

		candidate, err := s.provisioner.NewAccount(addr, password)
		if err != nil {
			return "", "", err
		}

		_, created, err := s.repomanager.GetOrCreate(ctx, s.db, candidate)
		if err != nil {
			return "", "", err
		}
		if created {
			return addr, password, nil
		}
	}
}
