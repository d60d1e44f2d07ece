package event

import (
	"context"
	"log/slog"
	"time"
)

const (
	routingKeyCustomerCreated = "customer.created"
	routingKeyCustomerUpdated = "customer.updated"
	routingKeyCustomerDeleted = "customer.deleted"
)

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error
	PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error
}

type CustomerEventPayload struct {
	CustomerID        int64     `json:"customerId"`
	Firstname         string    `json:"firstname"`
	Lastname          string    `json:"lastname"`
	DateOfBirth       time.Time `json:"dateOfBirth"`
	PhoneNumber       uint64    `json:"phoneNumber"`
	Email             string    `json:"email"`
	BankAccountNumber string    `json:"bankAccountNumber,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	CustomerID int64     `json:"customerId"`
}

// NoopEventPublisher is used when no broker is configured.
type NoopEventPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*NoopEventPublisher)(nil)

func NewNoopEventPublisher(logger *slog.Logger) *NoopEventPublisher {
	return &NoopEventPublisher{logger: logger.With("component", "NoopEventPublisher")}
}

func (p *NoopEventPublisher) PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error {
	p.logger.DebugContext(ctx, "Skipping event publish", slog.String("routingKey", routingKeyCustomerCreated), slog.Int64("customerID", event.Payload.CustomerID))
	return nil
}

func (p *NoopEventPublisher) PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error {
	p.logger.DebugContext(ctx, "Skipping event publish", slog.String("routingKey", routingKeyCustomerUpdated), slog.Int64("customerID", event.Payload.CustomerID))
	return nil
}

func (p *NoopEventPublisher) PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error {
	p.logger.DebugContext(ctx, "Skipping event publish", slog.String("routingKey", routingKeyCustomerDeleted), slog.Int64("customerID", event.CustomerID))
	return nil
}
