package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	routingKeyLoanCreated       = "loan.created"
	routingKeyLoanStatusChanged = "loan.status_changed"
	publisherAppID              = "loan-monitor"
)

type Publisher interface {
	PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error
	PublishLoanStatusChanged(ctx context.Context, event LoanStatusChangedEvent) error
}

type RabbitMQPublisher struct {
	conn         *amqp.Connection
	exchangeName string
	logger       *slog.Logger
}

var _ Publisher = (*RabbitMQPublisher)(nil)

func NewRabbitMQPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQPublisher", "exchange", exchangeName),
	}, nil
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey string, payload interface{}) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	channel, err := p.conn.Channel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	body, err := json.Marshal(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body))

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
			AppId:        publisherAppID,
		},
	)

	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message")
	return nil
}

func (p *RabbitMQPublisher) PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error {
	return p.publish(ctx, routingKeyLoanCreated, event)
}

func (p *RabbitMQPublisher) PublishLoanStatusChanged(ctx context.Context, event LoanStatusChangedEvent) error {
	return p.publish(ctx, routingKeyLoanStatusChanged, event)
}

// NopPublisher logs events instead of publishing them, used when RabbitMQ is
// disabled so the store can run standalone.
type NopPublisher struct {
	logger *slog.Logger
}

var _ Publisher = (*NopPublisher)(nil)

func NewNopPublisher(logger *slog.Logger) *NopPublisher {
	return &NopPublisher{logger: logger.With("component", "NopPublisher")}
}

func (p *NopPublisher) PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping loan created event", "loanID", event.Payload.LoanID)
	return nil
}

func (p *NopPublisher) PublishLoanStatusChanged(ctx context.Context, event LoanStatusChangedEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping loan status changed event", "loanID", event.LoanID)
	return nil
}
