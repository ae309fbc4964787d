// Package events announces storefront events on RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	EventsExchange           = "storefront.events"
	CartCheckedOutRoutingKey = "cart.checked_out"

	publishTimeout = 3 * time.Second
)

// channel is the part of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitPublisher struct {
	ch     channel
	logger *zap.Logger
	now    func() time.Time
}

// Dial connects to url and returns a publisher bound to the events exchange.
// The returned close function closes the channel and the connection.
func Dial(url string, logger *zap.Logger) (*RabbitPublisher, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp.Dial: %w", err)
	}

	p, err := NewRabbitPublisher(conn, logger)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	closeFn := func() error {
		if err := p.Close(); err != nil {
			_ = conn.Close()
			return err
		}
		return conn.Close()
	}

	return p, closeFn, nil
}

// NewRabbitPublisher opens a channel on conn and declares the durable topic exchange.
func NewRabbitPublisher(conn *amqp.Connection, logger *zap.Logger) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("conn.Channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declareEventsExchange: %w", err)
	}

	return newRabbitPublisher(ch, logger), nil
}

func newRabbitPublisher(ch channel, logger *zap.Logger) *RabbitPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RabbitPublisher{
		ch:     ch,
		logger: logger,
		now:    time.Now,
	}
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) PublishCartCheckedOut(ctx context.Context, cart domain.Cart, totals domain.Totals) error {
	ev := newCartCheckedOut(cart, totals, p.now())

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := p.publishJSON(ctx, CartCheckedOutRoutingKey, ev.EventID, body); err != nil {
		return fmt.Errorf("publishJSON: %w", err)
	}

	p.logger.Info("event published",
		zap.String("event_type", ev.EventType),
		zap.String("event_id", ev.EventID),
		zap.String("user_id", ev.UserID))

	return nil
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey, messageID string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		EventsExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    p.now().UTC(),
			Body:         body,
		},
	)
}

var _ port.CheckoutPublisher = (*RabbitPublisher)(nil)
