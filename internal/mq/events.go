package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/membersonly/forum/types"
	"go.uber.org/zap"
)

const (
	attrEventType         = "event_type"
	defaultPublishTimeout = 2 * time.Second
)

// Publisher sends forum activity events to a channel.
// A Publisher without a backend drops every event.
type Publisher struct {
	backend Backend
	channel string
	logger  *zap.Logger
	timeout time.Duration
}

func NewPublisher(backend Backend, channel string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{backend: backend, channel: channel, logger: logger, timeout: defaultPublishTimeout}
}

// Publish encodes the event as JSON and hands it to the broker, waiting at
// most the publish timeout. Failures are logged and never returned.
func (p *Publisher) Publish(ctx context.Context, event types.ActivityEvent) {
	if p == nil || p.backend == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("encode activity event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	id, err := p.backend.Publish(ctx, p.channel, data, map[string]string{attrEventType: string(event.Type)})
	if err != nil {
		p.logger.Warn("publish activity event",
			zap.String("channel", p.channel),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
		return
	}
	p.logger.Debug("activity event published", zap.String("message_id", id), zap.String("type", string(event.Type)))
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	if p == nil || p.backend == nil {
		return nil
	}
	return p.backend.Close()
}

// DecodeEvent parses an activity event from a delivered message.
func DecodeEvent(msg Message) (types.ActivityEvent, error) {
	var event types.ActivityEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.ActivityEvent{}, fmt.Errorf("decode activity event %s: %w", msg.ID, err)
	}
	return event, nil
}

// ConsumeEvents subscribes to channel and calls fn for every decodable event.
// Undecodable messages are acknowledged and skipped.
func ConsumeEvents(ctx context.Context, backend Backend, channel string, logger *zap.Logger, fn func(context.Context, types.ActivityEvent) error) error {
	return backend.Subscribe(ctx, channel, func(ctx context.Context, msg Message) error {
		event, err := DecodeEvent(msg)
		if err != nil {
			logger.Warn("skipping malformed activity event", zap.String("message_id", msg.ID), zap.Error(err))
			return nil
		}
		return fn(ctx, event)
	})
}
