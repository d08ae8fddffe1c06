package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

var _ secondary.EventPublisher = (*Publisher)(nil)

const interviewCompletedKey = "interview.completed"

var errNotConnected = errors.New("rabbitmq connection is not open")

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// Publisher sends domain events to a topic exchange. It reconnects lazily
// when the channel has been closed.
type Publisher struct {
	url      string
	exchange string
	logger   primary.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
	dial func() (*amqp.Connection, channel, error)
}

// NewPublisher dials RabbitMQ and declares the exchange.
func NewPublisher(cfg *config.EventsConfig, logger primary.Logger) (*Publisher, error) {
	p := &Publisher{
		url:      cfg.RabbitMQURL,
		exchange: cfg.Exchange,
		logger:   logger,
	}
	p.dial = p.connect
	if err := p.ensureChannel(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() (*amqp.Connection, channel, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return conn, ch, nil
}

func (p *Publisher) ensureChannel() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.closeLocked()

	conn, ch, err := p.dial()
	if err != nil {
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

// PublishInterviewCompleted publishes the event as persistent JSON. A failed
// publish is retried once after reconnecting.
func (p *Publisher) PublishInterviewCompleted(ctx context.Context, event *domain.InterviewCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.SessionID.String(),
		Timestamp:    event.OccurredAt,
		Type:         interviewCompletedKey,
		Body:         body,
	}

	err = p.publish(ctx, msg)
	if err != nil {
		p.logger.Warn("Failed to publish event, reconnecting", "error", err)
		p.mu.Lock()
		p.closeLocked()
		p.mu.Unlock()
		err = p.publish(ctx, msg)
	}
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", interviewCompletedKey, err)
	}

	p.logger.Debug("Event published", "type", interviewCompletedKey, "sessionId", event.SessionID)
	return nil
}

func (p *Publisher) publish(ctx context.Context, msg amqp.Publishing) error {
	if err := p.ensureChannel(); err != nil {
		return err
	}

	p.mu.Lock()
	ch := p.ch
	p.mu.Unlock()
	if ch == nil {
		return errNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ch.PublishWithContext(ctx, p.exchange, interviewCompletedKey, false, false, msg)
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

// Noop drops events. It is used when no broker is configured.
type Noop struct {
	Logger primary.Logger
}

func (n Noop) PublishInterviewCompleted(ctx context.Context, event *domain.InterviewCompletedEvent) error {
	if n.Logger != nil {
		n.Logger.Debug("No event broker configured, dropping event", "sessionId", event.SessionID)
	}
	return nil
}
