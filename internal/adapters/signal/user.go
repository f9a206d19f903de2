package signal

import (
	"github.com/dkeye/tunequiz/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionUserKey is where the HTTP layer stores the registered user id.
const SessionUserKey = "user_id"

// resolveUser finds the user of a WS request from the cookie session. With
// AllowQueryUser set, a user_id query parameter is the fallback.
func (ctl *SignalWSController) resolveUser(c *gin.Context) (*domain.User, error) {
	raw, _ := sessions.Default(c).Get(SessionUserKey).(string)
	if raw == "" && ctl.opts.AllowQueryUser {
		raw = c.Query("user_id")
	}
	id, err := domain.ParseUserID(raw)
	if err != nil {
		return nil, err
	}
	return ctl.Orch.Users.Get(c.Request.Context(), id)
}
