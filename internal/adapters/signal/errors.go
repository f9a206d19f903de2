package signal

import (
	"errors"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	codeNotFound     = "not_found"
	codeInvalidState = "invalid_state"
	codeConflict     = "conflict"
	codeUpstream     = "upstream"
	codeInternal     = "internal"
	codeBadPayload   = "bad_payload"
	codeRateLimited  = "rate_limited"
)

var errBadPayload = errors.New("bad payload")

// errorCode maps an error to the code a client can branch on.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadPayload):
		return codeBadPayload
	case errors.Is(err, domain.ErrNotFound):
		return codeNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return codeInvalidState
	case errors.Is(err, domain.ErrConflict):
		return codeConflict
	case errors.Is(err, domain.ErrUpstream):
		return codeUpstream
	default:
		return codeInternal
	}
}

// replyError sends the failure to the calling connection only. Internal
// errors are logged but not described to the client.
func (ctl *SignalWSController) replyError(conn core.ConnID, cmd string, err error) {
	code := errorCode(err)
	msg := err.Error()
	ev := log.Warn()
	if code == codeInternal {
		ev = log.Error()
		msg = "internal error"
	}
	ev.Err(err).Str("module", "signal").Str("conn", string(conn)).Str("cmd", cmd).Str("code", code).Msg("command failed")
	ctl.Orch.SendError(conn, code, msg)
}
