package app

import (
	"context"

	"github.com/boostgo/customercare/internal/core_domain"
)

// OrderClient is the upstream order management API.
type OrderClient interface {
	FetchNewOrder(ctx context.Context) (*core_domain.Order, error)
	MarkOrderStatus(ctx context.Context, orderID, status string) error
}

// NotificationSink delivers best-effort operator notifications. Implementations
// must not return errors; a failed notification is logged and dropped.
type NotificationSink interface {
	Send(ctx context.Context, text string)
}

// Alerter raises a local operator alert when a message fails. The default
// implementation only logs; deployments wire a buzzer or pager here.
type Alerter interface {
	FailureAlert(ctx context.Context)
}
