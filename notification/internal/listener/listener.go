// Package listener consumes order events published on redis.
package listener

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/gearshare/internal/log"
	inOtel "github.com/Alturino/gearshare/internal/otel"
	"github.com/Alturino/gearshare/notification/internal/otel"
	"github.com/Alturino/gearshare/order/pkg/response"
)

type Listener struct {
	messages <-chan *redis.Message
	webhook  *Webhook
}

// NewListener accepts a nil webhook, in which case events are only logged.
func NewListener(messages <-chan *redis.Message, webhook *Webhook) *Listener {
	return &Listener{messages: messages, webhook: webhook}
}

// Start returns when c is cancelled or the message channel is closed.
func (l *Listener) Start(c context.Context) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Listener Start").
		Str(log.KeyProcess, "listening order events").
		Logger()

	logger.Info().Msg("listening order events")
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped listening order events")
			return
		case msg, ok := <-l.messages:
			if !ok {
				logger.Info().Msg("order event channel closed")
				return
			}
			requestID := uuid.NewString()
			lg := logger.With().Str(log.KeyRequestID, requestID).Str(log.KeyChannel, msg.Channel).Logger()
			mc := log.AttachRequestIDToContext(lg.WithContext(c), requestID)
			if err := l.Handle(mc, msg.Payload); err != nil {
				lg.Error().Err(err).Msg(err.Error())
			}
		}
	}
}

func (l *Listener) Handle(c context.Context, payload string) error {
	c, span := otel.Tracer.Start(c, "Listener Handle")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Listener Handle").Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding order event").Logger()
	event := response.Event{}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		err = fmt.Errorf("failed decoding order event with error=%w", err)
		inOtel.RecordError(err, span)
		return err
	}
	logger = logger.With().
		Str(log.KeyEvent, event.Type).
		Str(log.KeyOrderID, event.OrderID.String()).
		Str(log.KeyOrderNumber, event.OrderNumber).
		Str(log.KeyOrderStatus, event.To).
		Logger()
	logger.Info().Msg("received order event")

	if l.webhook == nil {
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "posting webhook").Logger()
	if err := l.webhook.Post(c, event); err != nil {
		inOtel.RecordError(err, span)
		return err
	}
	logger.Info().Msg("posted webhook")

	return nil
}
