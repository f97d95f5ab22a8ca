// Package kafka dispatches alert notifications onto a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrisat/field-monitor/internal/domain"
	"github.com/agrisat/field-monitor/internal/ingest"
	kafkago "github.com/segmentio/kafka-go"
)

// Notifier publishes alert notifications. It implements ingest.Notifier.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the alert topic. With no brokers
// configured it returns nil, and the caller wires a NopNotifier instead.
func NewNotifier(brokers []string, topic string, logger *slog.Logger) *Notifier {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// NotifyAlert serializes and publishes one alert notification, keyed by
// field so a consumer sees each field's alerts in order.
func (n *Notifier) NotifyAlert(ctx context.Context, notification ingest.AlertNotification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("serialize alert notification: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(notification.FieldID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(notification.Type)},
			{Key: "severity", Value: []byte(notification.Severity)},
			{Key: "created_at", Value: []byte(domain.Now().Format(time.RFC3339))},
		},
	}
	return n.writer.WriteMessages(ctx, msg)
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// NopNotifier logs notifications instead of publishing them. Used when no
// brokers are configured.
type NopNotifier struct {
	Logger *slog.Logger
}

// NotifyAlert logs the notification and succeeds.
func (n *NopNotifier) NotifyAlert(_ context.Context, notification ingest.AlertNotification) error {
	n.Logger.Info("alert notification (kafka disabled)",
		"alert_id", notification.AlertID,
		"field_id", notification.FieldID,
		"type", notification.Type,
		"severity", notification.Severity)
	return nil
}
