package dict

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/doveauthd/internal/common"
	"github.com/dmitrijs2005/doveauthd/internal/logging"
	"github.com/dmitrijs2005/doveauthd/internal/server/models"
)

// AccountLookup is the slice of the account service the handler needs.
type AccountLookup interface {
	LookupPassdb(ctx context.Context, address, secret string) (*models.Account, error)
	LookupUserdb(ctx context.Context, address string) (*models.Account, error)
}

// Handler turns one request line into one reply line. It keeps no state
// between calls, so a single Handler serves every connection.
type Handler struct {
	auth   AccountLookup
	logger logging.Logger
}

func NewHandler(auth AccountLookup, l logging.Logger) *Handler {
	return &Handler{auth: auth, logger: l.With("module", "dict")}
}

// Handle processes a single request line and returns the reply line, or
// the empty string for lines that get no reply (the hello handshake).
// Every failure, malformed input included, degrades to the failure reply;
// nothing internal reaches the wire.
//
// Passdb keys carry the presented secret, so neither the raw line nor the
// key ever appears in a log record.
func (h *Handler) Handle(ctx context.Context, line string) string {
	if line == "" {
		return replyFail
	}

	switch line[0] {
	case cmdHello:
		return ""
	case cmdLookup:
		return h.handleLookup(ctx, line[1:])
	default:
		h.logger.Warn(ctx, "unsupported dict command", "command", string(line[0]))
		return replyFail
	}
}

func (h *Handler) handleLookup(ctx context.Context, payload string) string {
	req, err := parseLookup(payload)
	if err != nil {
		h.logger.Warn(ctx, "malformed dict lookup")
		return replyFail
	}

	var acct *models.Account
	switch req.class {
	case classPassdb:
		acct, err = h.auth.LookupPassdb(ctx, req.address, req.secret)
	case classUserdb:
		acct, err = h.auth.LookupUserdb(ctx, req.address)
	}

	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		return replyFail
	default:
		h.logger.Warn(ctx, "lookup failed", "class", req.class, "address", req.address, "error", err)
		return replyFail
	}

	reply, err := okReply(acct)
	if err != nil {
		h.logger.Error(ctx, "serializing reply", "address", req.address, "error", err)
		return replyFail
	}
	return reply
}
