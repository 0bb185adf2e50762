package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/unisoruyor/apiserver/config"
	"github.com/unisoruyor/apiserver/types"
)

// Message is a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Returning an error nacks it for redelivery.
type Handler func(ctx context.Context, msg Message) error

// Backend is implemented by each supported broker.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// Open connects to the broker selected by cfg.MQ.Backend.
// It returns a nil Backend when event publishing is disabled.
func Open(ctx context.Context, cfg config.Config) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.MQ.Backend)) {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "pubsub":
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// Notifications publishes and consumes notification events as JSON.
type Notifications struct {
	backend Backend
	channel string
}

func NewNotifications(backend Backend, channel string) *Notifications {
	return &Notifications{backend: backend, channel: channel}
}

// PublishNotification sends one event to the notification channel.
func (n *Notifications) PublishNotification(ctx context.Context, event types.NotificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	attrs := map[string]string{
		"type":    string(event.Type),
		"user_id": strconv.Itoa(event.UserID),
	}
	id, err := n.backend.Publish(ctx, n.channel, data, attrs)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "notification event published", "message_id", id, "notification_id", event.NotificationID)
	return nil
}

// Consume delivers events to fn until ctx is done. Messages that do not
// decode are logged and acknowledged so they are not redelivered.
func (n *Notifications) Consume(ctx context.Context, fn func(context.Context, types.NotificationEvent) error) error {
	return n.backend.Subscribe(ctx, n.channel, func(ctx context.Context, msg Message) error {
		var event types.NotificationEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.WarnContext(ctx, "dropping malformed notification event", "message_id", msg.ID, "error", err)
			return nil
		}
		return fn(ctx, event)
	})
}

func (n *Notifications) Close() error {
	return n.backend.Close()
}
