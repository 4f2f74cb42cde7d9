package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/openestate/realty-service/internal/models"
	"github.com/openestate/realty-service/internal/utils"
)

// DealPublisher emits an event after a deal commits. Publishing is
// best effort; the deal itself is already durable when this runs.
type DealPublisher interface {
	PublishDealClosed(ctx context.Context, deal *models.Deal) error
	Close() error
}

// DealClosedEvent is the wire payload.
type DealClosedEvent struct {
	DealID     string    `json:"deal_id"`
	PropertyID string    `json:"property_id"`
	CustomerID string    `json:"customer_id"`
	DealCost   float64   `json:"deal_cost"`
	DealDate   time.Time `json:"deal_date"`
}

/* ------------------------------------------------------------------
   AMQP implementation
------------------------------------------------------------------ */

type amqpPublisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queue      string
}

// NewAMQPDealPublisher dials the broker and declares a durable queue.
func NewAMQPDealPublisher(url, queue string) (DealPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	utils.Logger.Infof("Deal event publisher connected; queue=%s", queue)
	return &amqpPublisher{connection: conn, channel: ch, queue: queue}, nil
}

func (p *amqpPublisher) PublishDealClosed(ctx context.Context, deal *models.Deal) error {
	event := DealClosedEvent{
		DealID:     deal.ID.String(),
		PropertyID: deal.PropertyID.String(),
		CustomerID: deal.CustomerID.String(),
		DealCost:   deal.DealCost,
		DealDate:   deal.DealDate,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(
		ctx,
		"", // default exchange
		p.queue,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *amqpPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.connection != nil {
		return p.connection.Close()
	}
	return nil
}

/* ------------------------------------------------------------------
   No-op implementation, used when AMQP_URL is not configured
------------------------------------------------------------------ */

type noopPublisher struct{}

func NewNoopDealPublisher() DealPublisher { return noopPublisher{} }

func (noopPublisher) PublishDealClosed(context.Context, *models.Deal) error { return nil }
func (noopPublisher) Close() error                                          { return nil }
