// Package provision derives account identity from the per-domain
// configuration and turns presented secrets into stored credentials.
// It never touches the database.
package provision

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/doveauthd/internal/cryptox"
	"github.com/dmitrijs2005/doveauthd/internal/server/config"
	"github.com/dmitrijs2005/doveauthd/internal/server/models"
	"github.com/dmitrijs2005/doveauthd/internal/shared"
)

// credAlphabet is the character set for generated addresses and passwords.
// It leaves out 0/o, 1/l/i and 6/b, which are easy to misread when the
// credentials are shown in a QR code or typed over.
const credAlphabet = "2345789acdefghjkmnpqrstuvwxyz"

const (
	localPartLength = 9
	passwordLength  = 16
)

// Provisioner computes the non-stored half of an account: home directory,
// storage owner, and the tagged password hash. All derivations are
// deterministic in the address, so repeated lookups of one account come out
// byte-identical.
type Provisioner struct {
	mailDomain string
	vmailDir   string
	vmailUser  string
}

func New(cfg *config.Config) *Provisioner {
	return &Provisioner{
		mailDomain: cfg.MailDomain,
		vmailDir:   cfg.VmailDir,
		vmailUser:  cfg.VmailUser,
	}
}

// HomeDir returns the maildir location for addr, <vmail dir>/<addr>.
func (p *Provisioner) HomeDir(addr string) string {
	return filepath.Join(p.vmailDir, addr)
}

// FillIdentity populates the derived fields of acct from its address.
// Address must already be normalized.
func (p *Provisioner) FillIdentity(acct *models.Account) {
	acct.HomeDir = p.HomeDir(acct.Address)
	acct.UID = p.vmailUser
	acct.GID = p.vmailUser
}

// NewAccount builds a candidate account for address with the given secret:
// the address is lower-cased, the secret hashed into the tagged format, and
// the derived identity filled in. The caller decides whether the candidate
// ever reaches the store.
func (p *Provisioner) NewAccount(address, secret string) (*models.Account, error) {
	buf := []byte(secret)
	defer shared.WipeByteArray(buf)

	hash, err := cryptox.HashPassword(buf)
	if err != nil {
		return nil, err
	}

	acct := &models.Account{
		Address:      strings.ToLower(address),
		PasswordHash: hash,
	}
	p.FillIdentity(acct)

	return acct, nil
}

// NewRandomCredentials generates a fresh address under the configured mail
// domain together with a random password. Both are drawn from crypto/rand.
func (p *Provisioner) NewRandomCredentials() (addr string, password string, err error) {
	local, err := shared.MakeRandString(localPartLength, credAlphabet)
	if err != nil {
		return "", "", err
	}

	password, err = shared.MakeRandString(passwordLength, credAlphabet)
	if err != nil {
		return "", "", err
	}

	return fmt.Sprintf("%s@%s", local, p.mailDomain), password, nil
}
