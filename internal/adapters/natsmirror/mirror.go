// Package natsmirror copies room events onto NATS subjects so other
// processes can observe rooms. Nothing is read back.
package natsmirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Rooms/internal/core"
	"github.com/dkeye/Rooms/internal/domain"
)

// Publisher is the part of a NATS connection the mirror uses.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Mirror publishes each room frame to <prefix>.<roomID>.<event>.
type Mirror struct {
	pub    Publisher
	prefix string
}

func New(pub Publisher, prefix string) *Mirror {
	return &Mirror{pub: pub, prefix: prefix}
}

// Connect dials url and returns a mirror over the connection along with
// the function that drains it.
func Connect(url, prefix string) (*Mirror, func(), error) {
	nc, err := nats.Connect(url,
		nats.Name("rooms"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Str("module", "natsmirror").Msg("disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("module", "natsmirror").Str("url", nc.ConnectedUrl()).Msg("reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to nats %s: %w", url, err)
	}
	log.Info().Str("module", "natsmirror").Str("url", nc.ConnectedUrl()).Str("prefix", prefix).Msg("mirror connected")

	stop := func() {
		if err := nc.Drain(); err != nil {
			log.Warn().Err(err).Str("module", "natsmirror").Msg("drain")
		}
	}
	return New(nc, prefix), stop, nil
}

func (m *Mirror) Publish(roomID domain.RoomID, event string, frame core.Frame) {
	subject := Subject(m.prefix, roomID, event)
	if err := m.pub.Publish(subject, frame); err != nil {
		log.Warn().Err(err).Str("module", "natsmirror").Str("subject", subject).Msg("publish")
	}
}

var tokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_", "\n", "_", "\r", "_")

// Subject builds the subject for a room event. Room ids are client supplied,
// so characters NATS treats as separators or wildcards are replaced.
func Subject(prefix string, roomID domain.RoomID, event string) string {
	token := tokenReplacer.Replace(string(roomID))
	if prefix == "" {
		return token + "." + event
	}
	return prefix + "." + token + "." + event
}
