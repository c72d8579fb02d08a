// Package service defines interfaces for infrastructure-backed services the
// use cases depend on.
package service

import (
	"context"
)

// NotificationService delivers push messages to booking clients.
type NotificationService interface {
	// NotifyTurn tells a client that their appointment is now being served.
	// Delivery is best effort; queue advancement never depends on it.
	NotifyTurn(ctx context.Context, clientUserID, businessName string, queueNumber int64) error
}
