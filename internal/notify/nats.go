// internal/notify/nats.go
//
// NATS-backed Bus for deployments running more than one server instance:
// a ready-toggle handled by one instance still wakes SSE subscribers held
// by another. Subject layout: <prefix>.<roomID>.

package notify

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

type natsBus struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSBus connects to url and returns a Bus publishing under prefix.
func NewNATSBus(url, prefix string) (Bus, error) {
	nc, err := nats.Connect(url, nats.Name("lexiround-notify"))
	if err != nil {
		return nil, fmt.Errorf("notify: connect nats: %w", err)
	}
	return &natsBus{nc: nc, prefix: prefix}, nil
}

func (b *natsBus) subject(room string) string {
	return b.prefix + "." + room
}

func (b *natsBus) Publish(room string, payload []byte) error {
	return b.nc.Publish(b.subject(room), payload)
}

func (b *natsBus) Subscribe(room string, fn func(payload []byte)) (func(), error) {
	sub, err := b.nc.Subscribe(b.subject(room), func(msg *nats.Msg) {
		fn(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("notify: subscribe %s: %w", room, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
