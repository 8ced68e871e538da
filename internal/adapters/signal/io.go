package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rooms/internal/app/orch"
	"github.com/dkeye/Rooms/internal/domain"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	var tick <-chan time.Time
	if ctl.opts.PingPeriod > 0 {
		ticker := time.NewTicker(ctl.opts.PingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "adapters.signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(ctl.deadline()); err != nil {
				log.Error().Err(err).Str("module", "adapters.signal").Msg("writePump set deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "adapters.signal").Msg("writePump write error")
				return
			}
		case <-tick:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, ctl.deadline()); err != nil {
				log.Warn().Err(err).Str("module", "adapters.signal").Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) deadline() time.Time {
	if ctl.opts.WriteWait <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ctl.opts.WriteWait)
}

// readPump feeds frames to the dispatch loop. Its exit is the disconnect
// signal for the player.
func (ctl *SignalWSController) readPump(ctx context.Context, pid domain.PlayerID, c *WsSignalConn) {
	logger := log.With().Str("module", "adapters.signal").Str("player_id", string(pid)).Logger()
	defer func() {
		c.Close()
		if err := ctl.Orch.Submit(ctx, orch.Inbound{Kind: orch.KindDisconnect, PlayerID: pid, Conn: c}); err != nil {
			logger.Warn().Err(err).Msg("disconnect not delivered")
		}
		logger.Info().Msg("readPump closing")
	}()

	if ctl.opts.ReadLimit > 0 {
		c.conn.SetReadLimit(ctl.opts.ReadLimit)
	}
	if ctl.opts.PongWait > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
		})
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn().Err(err).Msg("readPump read error")
			}
			return
		}
		if ctl.opts.PongWait > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
		}
		if err := ctl.Orch.Submit(ctx, orch.Inbound{Kind: orch.KindFrame, PlayerID: pid, Conn: c, Frame: data}); err != nil {
			logger.Warn().Err(err).Msg("frame not delivered")
			return
		}
	}
}
