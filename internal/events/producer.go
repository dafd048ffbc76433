package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderPaidEvent is published after an order commits. Consumers
// (notifications, loyalty, analytics) are downstream collaborators;
// delivery is best-effort and never blocks order commit.
type OrderPaidEvent struct {
	EventID     string          `json:"event_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      *uuid.UUID      `json:"user_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Trigger     string          `json:"trigger"`
	Timestamp   time.Time       `json:"timestamp"`
}

type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer returns a producer, or nil when no brokers are
// configured (single-node deployments run without Kafka).
func NewProducer(brokers, topic string, logger *zap.Logger) *Producer {
	if brokers == "" {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
	return &Producer{writer: w, logger: logger}
}

// PublishOrderPaid emits the event, logging failures instead of
// returning them.
func (p *Producer) PublishOrderPaid(ctx context.Context, ev OrderPaidEvent) {
	if p == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("marshal order event", zap.Error(err))
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderNumber),
		Value: data,
	})
	if err != nil {
		p.logger.Error("publish order event",
			zap.String("order_number", ev.OrderNumber),
			zap.Error(err))
	}
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
