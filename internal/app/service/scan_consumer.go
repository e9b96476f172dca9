package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/PowerQR/internal/app/model"
	apprepository "github.com/sifan077/PowerQR/internal/app/repository"
	natsclient "github.com/sifan077/PowerQR/internal/infra/nats"
	infraPrometheus "github.com/sifan077/PowerQR/internal/infra/prometheus"
	"go.uber.org/zap"
)

// ScanConsumer projects scan notifications into per-code counters.
type ScanConsumer struct {
	js       nats.JetStreamContext
	logger   *zap.Logger
	counters apprepository.ScanCounterRepository
}

// NewScanConsumer creates a new scan notification consumer.
func NewScanConsumer(js nats.JetStreamContext, logger *zap.Logger, counters apprepository.ScanCounterRepository) *ScanConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanConsumer{js: js, logger: logger, counters: counters}
}

// ScanStreamSpec describes the stream carrying scan notifications.
func ScanStreamSpec() natsclient.StreamSpec {
	return natsclient.StreamSpec{
		Name:     model.ScanStreamName,
		Subjects: []string{model.ScanStreamSubject},
		MaxBytes: model.ScanStreamMaxBytes,
	}
}

// Start ensures the stream and durable consumer exist and begins consuming
// until ctx is cancelled.
func (c *ScanConsumer) Start(ctx context.Context) error {
	if err := natsclient.EnsureStream(c.js, ScanStreamSpec()); err != nil {
		return err
	}

	// Create consumer if not exists
	_, err := c.js.ConsumerInfo(model.ScanStreamName, model.ScanConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.ScanStreamName, &nats.ConsumerConfig{
			Durable:   model.ScanConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.ScanStreamSubject, model.ScanConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go c.consume(ctx, sub)
	return nil
}

func (c *ScanConsumer) consume(ctx context.Context, sub *nats.Subscription) {
	defer func() {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			c.logger.Warn("failed to unsubscribe scan consumer", zap.Error(err))
		}
	}()

	for {
		if ctx.Err() != nil {
			c.logger.Info("scan consumer stopped")
			return
		}

		msgs, err := sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil && !errors.Is(err, nats.ErrTimeout) {
			if errors.Is(err, nats.ErrConnectionClosed) || errors.Is(err, nats.ErrBadSubscription) {
				c.logger.Info("scan consumer subscription closed", zap.Error(err))
				return
			}
			c.logger.Error("failed to fetch messages", zap.Error(err))
			continue
		}

		for _, msg := range msgs {
			c.handle(ctx, msg)
		}
	}
}

func (c *ScanConsumer) handle(ctx context.Context, msg *nats.Msg) {
	var event model.ScanEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logger.Error("failed to unmarshal scan event", zap.Error(err))
		infraPrometheus.ScanNotificationsTotal.WithLabelValues("consume_failed").Inc()
		// malformed payloads never become valid; drop them
		_ = msg.Term()
		return
	}

	if err := c.counters.Increment(ctx, event.QRCodeID); err != nil {
		c.logger.Error("failed to increment scan counter",
			zap.String("id", event.ID),
			zap.String("qr_code_id", event.QRCodeID),
			zap.Error(err))
		infraPrometheus.ScanNotificationsTotal.WithLabelValues("consume_failed").Inc()
		_ = msg.Nak()
		return
	}

	c.logger.Debug("scan counter incremented",
		zap.String("id", event.ID),
		zap.String("qr_code_id", event.QRCodeID),
		zap.Time("scanned_at", event.ScannedAt),
	)
	infraPrometheus.ScanNotificationsTotal.WithLabelValues("consumed").Inc()
	_ = msg.Ack()
}
