package contract

import "context"

// OrderService creates purchase orders. External collaborator; failures are
// translated into chat text by the tool mediator, never surfaced raw.
type OrderService interface {
	Create(ctx context.Context, args PlaceOrderArgs) (Order, error)
}

// CatalogReader supplies the read-only snapshot used for prompt grounding.
type CatalogReader interface {
	ListActiveAccounts(ctx context.Context) ([]Account, error)
	ListActiveCatalogItems(ctx context.Context) ([]CatalogItem, error)
}

// EventPublisher fans out domain events (order created) to the queue.
// Publish failures must be treated as non-fatal by callers.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
