package nats

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
	"github.com/fenelonlekeats805-afk/testcoinmart/internal/logger"
)

// Subjects published by the engine. Consumers (storefront, ops bots)
// subscribe to these, the engine never subscribes itself.
const (
	SubjOrderCreated    = "orders.created"
	SubjOrderPaid       = "orders.paid"
	SubjOrderDispatched = "orders.dispatched"
	SubjOrderExpired    = "orders.expired"
	SubjOrderManual     = "orders.manual_attention"
	SubjSupportTicket   = "support.ticket"
)

type NatsInfra struct {
	Nc *nats.Conn
}

func Init(config *config.Config, log logger.Logger) *NatsInfra {
	if config.Nats.Servers == "" {
		return &NatsInfra{}
	}

	nc, err := nats.Connect(config.Nats.Servers,
		nats.MaxReconnects(100),
		nats.ReconnectWait(3*time.Second),
		nats.DisconnectHandler(func(nc *nats.Conn) {
			log.TemplNatsInfo("disconnected", nc.ConnectedUrl())
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.TemplNatsInfo("reconnected", nc.ConnectedUrl())
		}))
	if err != nil {
		panic("NATS: connect failed: " + err.Error())
	}

	return &NatsInfra{Nc: nc}
}

// Publish sends raw bytes on subject. A nil connection (nats not
// configured) is a no-op so single-binary deployments work without a
// broker. Also serves as the logger sink.
func (n *NatsInfra) Publish(subject string, data []byte) error {
	if n == nil || n.Nc == nil {
		return nil
	}
	return n.Nc.Publish(subject, data)
}

// PublishJson marshals v and publishes it on subject.
func (n *NatsInfra) PublishJson(subject string, v any) error {
	if n == nil || n.Nc == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return n.Nc.Publish(subject, data)
}

func (n *NatsInfra) Drain() {
	if n == nil || n.Nc == nil {
		return
	}
	n.Nc.Drain()
}
