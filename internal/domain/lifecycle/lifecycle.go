// Package lifecycle holds shared lifecycle tuning values.
package lifecycle

import "time"

// DefaultTimeout bounds graceful-shutdown work such as draining the HTTP
// server or closing the event publisher.
const DefaultTimeout = 10 * time.Second
