// Package delivery defines the interface every transport server implements.
package delivery

import "context"

// Delivery is a transport-layer server (HTTP today) started by main.
type Delivery interface {
	Serve(ctx context.Context) error
}
