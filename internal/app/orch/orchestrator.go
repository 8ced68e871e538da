package orch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rooms/internal/app"
	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
)

var ErrStopped = errors.New("orchestrator stopped")

type Kind int

const (
	KindFrame Kind = iota
	KindDisconnect
)

// Inbound is one unit of work for the dispatch loop: a frame read from a
// connection, or the notice that the connection is gone.
type Inbound struct {
	Kind     Kind
	PlayerID domain.PlayerID
	Conn     core.SignalConnection
	Frame    []byte
}

// Orchestrator handles inbound events from every connection, one at a time.
type Orchestrator struct {
	Registry    *app.SessionRegistry
	Broadcaster *app.Broadcaster
	Limiter     *app.RateLimiter

	now     func() time.Time
	inbound chan Inbound
	done    chan struct{}
}

func New(reg *app.SessionRegistry, b *app.Broadcaster, limiter *app.RateLimiter, buffer int) *Orchestrator {
	if buffer < 0 {
		buffer = 0
	}
	return &Orchestrator{
		Registry:    reg,
		Broadcaster: b,
		Limiter:     limiter,
		now:         time.Now,
		inbound:     make(chan Inbound, buffer),
		done:        make(chan struct{}),
	}
}

// Run processes submitted events until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer close(o.done)
	log.Info().Str("module", "orch").Msg("dispatch loop started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "orch").Msg("dispatch loop stopped")
			return nil
		case in := <-o.inbound:
			o.dispatch(in)
		}
	}
}

// Submit queues an event for the dispatch loop. It waits for room in the
// queue, giving up when ctx is done or the loop has stopped.
func (o *Orchestrator) Submit(ctx context.Context, in Inbound) error {
	select {
	case <-o.done:
		return ErrStopped
	default:
	}
	select {
	case o.inbound <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-o.done:
		return ErrStopped
	}
}

func (o *Orchestrator) dispatch(in Inbound) {
	switch in.Kind {
	case KindDisconnect:
		o.disconnect(in.PlayerID)
	case KindFrame:
		o.handleFrame(in)
	default:
		log.Warn().Str("module", "orch").Int("kind", int(in.Kind)).Msg("unknown inbound kind")
	}
}

// disconnect is the transport's cancellation signal. It races explicit
// leaves harmlessly: whichever comes second finds no record.
func (o *Orchestrator) disconnect(pid domain.PlayerID) {
	left := o.Registry.LeaveRoom(pid)
	o.Limiter.Forget(pid)
	log.Info().Str("module", "orch").Str("player_id", string(pid)).Bool("left_room", left).Msg("disconnect")
}
