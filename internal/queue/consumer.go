package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/persondir/internal/models"
)

// EventHandler processes one decoded person event. A returned error naks the
// message for redelivery.
type EventHandler func(ctx context.Context, evt models.PersonEvent) error

type Consumer struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewConsumer(natsURL string) (*Consumer, error) {
	nc, err := connect(natsURL)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Consumer{nc: nc, js: js}, nil
}

// ConsumeEvents starts a durable consumer on the PERSONS stream limited to
// filterSubject and runs handler for each message until ctx is done.
func (c *Consumer) ConsumeEvents(ctx context.Context, consumerName, filterSubject string, handler EventHandler) error {
	stream, err := c.js.Stream(ctx, PersonsStreamName)
	if err != nil {
		return fmt.Errorf("get stream %s: %w", PersonsStreamName, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consumerName,
		Durable:       consumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       10 * time.Second,
		MaxDeliver:    5,
		FilterSubject: filterSubject,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("create consumer %s: %w", consumerName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			batch, err := cons.Fetch(10, jetstream.FetchMaxWait(5*time.Second))
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("fetch person events error", "consumer", consumerName, "error", err)
				time.Sleep(time.Second)
				continue
			}

			for msg := range batch.Messages() {
				handleMessage(ctx, msg, handler)
			}
		}
	}()

	slog.Info("person event consumer started", "consumer", consumerName, "subject", filterSubject)
	return nil
}

func handleMessage(ctx context.Context, msg jetstream.Msg, handler EventHandler) {
	var evt models.PersonEvent
	if err := json.Unmarshal(msg.Data(), &evt); err != nil {
		// A malformed payload will never decode; drop it.
		slog.Error("decode person event", "subject", msg.Subject(), "error", err)
		_ = msg.Term()
		return
	}
	if err := handler(ctx, evt); err != nil {
		slog.Error("process person event error", "type", evt.Type, "person_id", evt.PersonID, "error", err)
		_ = msg.Nak()
		return
	}
	_ = msg.Ack()
}

func (c *Consumer) Close() {
	c.nc.Close()
}
