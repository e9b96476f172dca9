package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sifan077/PowerQR/internal/app/model"
	infraPrometheus "github.com/sifan077/PowerQR/internal/infra/prometheus"
)

const defaultPublishTimeout = 2 * time.Second

// ScanPublisher publishes persisted scan events to NATS JetStream.
type ScanPublisher struct {
	js      nats.JetStreamContext
	timeout time.Duration
}

// NewScanPublisher creates a new scan event publisher. Each publish waits at
// most timeout for the stream ack; zero selects a 2s default.
func NewScanPublisher(js nats.JetStreamContext, timeout time.Duration) *ScanPublisher {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &ScanPublisher{js: js, timeout: timeout}
}

// Notify publishes the event to the scan stream.
func (p *ScanPublisher) Notify(ctx context.Context, event *model.ScanEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// the client buffers while reconnecting and would otherwise wait on ctx forever
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.js.Publish(model.ScanStreamSubject, data, nats.Context(ctx)); err != nil {
		infraPrometheus.ScanNotificationsTotal.WithLabelValues("publish_failed").Inc()
		return err
	}
	infraPrometheus.ScanNotificationsTotal.WithLabelValues("published").Inc()
	return nil
}
