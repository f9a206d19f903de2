package signal

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Handler binds the controller to a gin route. Connections are tied to ctx
// and all close when it is canceled.
func (ctl *SignalWSController) Handler(ctx context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	}
}
