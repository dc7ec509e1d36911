// Package dict serves dovecot's dict text protocol over a unix or tcp
// listener: one request line in, at most one reply line out, no session
// state between lines.
package dict

import (
	"encoding/json"
	"strings"

	"github.com/dmitrijs2005/doveauthd/internal/common"
	"github.com/dmitrijs2005/doveauthd/internal/server/models"
)

// Request lines are classified by their first byte. The enumeration is
// closed: anything it does not list gets the failure reply.
const (
	cmdHello  byte = 'H'
	cmdLookup byte = 'L'
)

const (
	replyOK   = "O"
	replyFail = "F\n"
)

// Lookup classes inside the shared namespace.
const (
	classPassdb = "passdb"
	classUserdb = "userdb"
)

// lookup is a parsed "L" request payload.
type lookup struct {
	class   string
	address string
	// secret is the presented password the dict client splices into a
	// passdb key. Empty for userdb lookups.
	secret string
}

// parseLookup splits the payload of a lookup line:
//
//	shared/passdb/<secret>/<address>\t<address echo>
//	shared/userdb/<address>\t<address echo>
//
// The echo after the tab must be present but is otherwise ignored. The
// secret may itself contain '/', so the address is taken from the last
// path segment.
func parseLookup(payload string) (*lookup, error) {
	key, _, ok := strings.Cut(payload, "\t")
	if !ok {
		return nil, common.ErrMalformedRequest
	}

	rest, ok := strings.CutPrefix(key, "shared/")
	if !ok {
		return nil, common.ErrMalformedRequest
	}

	class, rest, ok := strings.Cut(rest, "/")
	if !ok || rest == "" {
		return nil, common.ErrMalformedRequest
	}

	switch class {
	case classPassdb:
		i := strings.LastIndex(rest, "/")
		if i <= 0 || i == len(rest)-1 {
			return nil, common.ErrMalformedRequest
		}
		return &lookup{class: classPassdb, secret: rest[:i], address: rest[i+1:]}, nil
	case classUserdb:
		return &lookup{class: classUserdb, address: rest}, nil
	default:
		return nil, common.ErrMalformedRequest
	}
}

// accountReply is the success payload. Declaration order is wire order.
type accountReply struct {
	Address  string `json:"address"`
	Gid      string `json:"gid"`
	Home     string `json:"home"`
	Password string `json:"password"`
	UID      string `json:"uid"`
}

// okReply serializes acct into the success line "O" + compact JSON + "\n".
func okReply(acct *models.Account) (string, error) {
	payload, err := json.Marshal(accountReply{
		Address:  acct.Address,
		Gid:      acct.GID,
		Home:     acct.HomeDir,
		Password: acct.PasswordHash,
		UID:      acct.UID,
	})
	if err != nil {
		return "", err
	}
	return replyOK + string(payload) + "\n", nil
}
