package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/tunequiz/internal/core"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			c.Close()
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, conn core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(conn)).Msg("readPump closing")
		cancel()
		c.Close()
		leaveCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		ctl.Orch.OnDisconnect(leaveCtx, conn)
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.pongWait()))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(conn)).Msg("readPump read error")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		ctl.handleSignal(ctx, conn, data)
	}
}

type envelope struct {
	Type string `json:"type"`
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, conn core.ConnID, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.Orch.SendError(conn, codeBadPayload, "bad json")
		return
	}

	if env.Type != "ping" && ctl.opts.Limiter != nil {
		if user, ok := ctl.Orch.Registry.UserOf(conn); ok && !ctl.opts.Limiter.Allow(user) {
			ctl.Orch.SendError(conn, codeRateLimited, "too many commands")
			return
		}
	}

	var err error
	switch env.Type {
	case "create_room":
		err = ctl.handleCreateRoom(ctx, conn, data)
	case "join_room":
		err = ctl.handleJoinRoom(ctx, conn, data)
	case "leave_room":
		err = ctl.Orch.LeaveRoom(ctx, conn)
	case "start_game":
		err = ctl.Orch.StartGame(ctx, conn)
	case "next_question":
		err = ctl.handleNextQuestion(ctx, conn, data)
	case "submit_answer":
		err = ctl.handleSubmitAnswer(ctx, conn, data)
	case "get_results":
		err = ctl.handleGetResults(ctx, conn, data)
	case "end_game":
		err = ctl.handleEndGame(ctx, conn, data)
	case "is_host":
		err = ctl.Orch.IsHost(ctx, conn)
	case "list_rooms":
		err = ctl.Orch.ListRooms(ctx, conn)
	case "whoami":
		err = ctl.Orch.WhoAmI(ctx, conn)
	case "ping":
		ctl.Orch.Ping(conn)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.Orch.SendError(conn, codeBadPayload, "unknown command "+env.Type)
		return
	}
	if err != nil {
		ctl.replyError(conn, env.Type, err)
	}
}

func decode[T any](data []byte) (T, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return p, errBadPayload
	}
	return p, nil
}
