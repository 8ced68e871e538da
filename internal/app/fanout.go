package app

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
	"github.com/dkeye/Rooms/internal/protocol"
)

// Mirror receives a copy of every room-scoped frame.
type Mirror interface {
	Publish(roomID domain.RoomID, event string, frame core.Frame)
}

// Fanout encodes an event once and hands the frame to each recipient's
// channel without blocking. Failed sends are dropped; the policy decides
// what happens to a recipient that cannot keep up.
//
// Deliveries are serialized, so every recipient sees frames in the order
// Deliver was called.
type Fanout struct {
	mu     sync.Mutex
	policy Policy
	mirror Mirror
}

func NewFanout(policy Policy, mirror Mirror) *Fanout {
	if policy == nil {
		policy = SimplePolicy{Action: DropFrame}
	}
	return &Fanout{policy: policy, mirror: mirror}
}

func (f *Fanout) Deliver(roomID domain.RoomID, recipients []core.Recipient, event string, payload any) core.PublishResult {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Str("room_id", string(roomID)).Str("event", event).Msg("encode")
		return core.PublishResult{}
	}

	f.mu.Lock()
	res := f.sendLocked(roomID, recipients, frame)
	f.mu.Unlock()

	if f.mirror != nil {
		f.mirror.Publish(roomID, event, frame)
	}
	log.Debug().
		Str("module", "app.fanout").
		Str("room_id", string(roomID)).
		Str("event", event).
		Int("sent_to", res.SendTo).
		Int("dropped", len(res.Dropped)).
		Msg("broadcast result")
	return res
}

// Reply sends an event to a single channel. Replies are not mirrored.
func (f *Fanout) Reply(rc core.Recipient, event string, payload any) bool {
	frame, err := protocol.Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.fanout").Str("player_id", string(rc.PlayerID)).Str("event", event).Msg("encode")
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendLocked("", []core.Recipient{rc}, frame).SendTo == 1
}

func (f *Fanout) sendLocked(roomID domain.RoomID, recipients []core.Recipient, frame core.Frame) core.PublishResult {
	res := core.PublishResult{}
	for _, rc := range recipients {
		err := rc.Conn.TrySend(frame)
		if err == nil {
			res.SendTo++
			continue
		}
		res.Dropped = append(res.Dropped, rc)
		log.Debug().Err(err).Str("module", "app.fanout").Str("player_id", string(rc.PlayerID)).Msg("frame dropped")

		if !errors.Is(err, core.ErrBackpressure) {
			continue
		}
		switch f.policy.OnBackPressure(roomID, rc) {
		case KickMember:
			log.Warn().Str("module", "app.fanout").Str("player_id", string(rc.PlayerID)).Msg("closing slow connection")
			rc.Conn.Close()
		case DropFrame, NoAction:
		}
	}
	return res
}

// RecipientSource resolves the channels of a room's members.
type RecipientSource interface {
	Recipients(roomID domain.RoomID, exclude ...domain.PlayerID) ([]core.Recipient, bool)
}

// Broadcaster delivers an event to every current member of a room,
// optionally skipping some of them. Unknown rooms are a no-op.
type Broadcaster struct {
	members RecipientSource
	out     *Fanout
}

func NewBroadcaster(members RecipientSource, out *Fanout) *Broadcaster {
	return &Broadcaster{members: members, out: out}
}

func (b *Broadcaster) Broadcast(roomID domain.RoomID, event string, payload any, exclude ...domain.PlayerID) core.PublishResult {
	recipients, ok := b.members.Recipients(roomID, exclude...)
	if !ok {
		log.Debug().Str("module", "app.fanout").Str("room_id", string(roomID)).Str("event", event).Msg("broadcast to unknown room")
		return core.PublishResult{}
	}
	return b.out.Deliver(roomID, recipients, event, payload)
}

// Reply sends directly to one connection.
func (b *Broadcaster) Reply(pid domain.PlayerID, conn core.SignalConnection, event string, payload any) bool {
	return b.out.Reply(core.Recipient{PlayerID: pid, Conn: conn}, event, payload)
}
