package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/FENGsir1992/mall-payment-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

// PaymentEventPublisher pushes payment lifecycle events to the
// storefront's event topic.
type PaymentEventPublisher struct {
	writer *kafka.Writer
}

func NewPaymentEventPublisher(brokers []string, topic string) *PaymentEventPublisher {
	return &PaymentEventPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *PaymentEventPublisher) PublishPaymentEvent(event domain.PaymentEvent) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(context.Background(), kafka.Message{
		Key:   []byte(event.OrderID),
		Value: msg,
		Time:  time.Now(),
	})
}

func (p *PaymentEventPublisher) Close() error {
	return p.writer.Close()
}
