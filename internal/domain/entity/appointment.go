package entity

import (
	"strings"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment in a queue.
// PENDING and CURRENT are active; SERVED is terminal.
type AppointmentStatus string

const (
	// StatusPending means the appointment is booked and waiting.
	StatusPending AppointmentStatus = "PENDING"
	// StatusCurrent means the provider is actively serving this appointment.
	// A business has at most one CURRENT appointment at any time.
	StatusCurrent AppointmentStatus = "CURRENT"
	// StatusServed means the appointment was completed. Served appointments
	// are kept for history and only removed by a queue reset.
	StatusServed AppointmentStatus = "SERVED"
)

// Active reports whether the appointment still occupies a queue slot.
func (s AppointmentStatus) Active() bool {
	return s != StatusServed
}

// NormalizeStatus maps raw status strings, including the legacy spellings
// older records carry, onto the three canonical states. Unknown values
// fall back to PENDING.
func NormalizeStatus(raw string) AppointmentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SERVED", "COMPLETED", "DONE":
		return StatusServed
	case "CURRENT", "SERVING", "IN_PROGRESS", "NOW_SERVING":
		return StatusCurrent
	default:
		return StatusPending
	}
}

// Appointment represents one client's reserved position in a business's queue.
type Appointment struct {
	ID           string            `json:"id"`            // Document ID assigned by the store.
	BusinessID   string            `json:"business_id"`   // Owning business.
	BusinessName string            `json:"business_name"` // Denormalized copy of the business name at booking time.
	ClientName   string            `json:"client_name"`   // Display name of the booking client.
	ClientUserID string            `json:"client_user_id"`
	QueueNumber  int64             `json:"queue_number"` // Sequence position; 0 marks a legacy value with no digits.
	Status       AppointmentStatus `json:"status"`
	BookedAt     time.Time         `json:"booked_at"`
}

// ParseQueueNumber extracts a queue number from whatever shape the store
// returned it in. Legacy records hold strings like "7" or "token12"; the
// first run of digits wins. Values with no digits normalize to 0, which
// CompareByQueueNumber sorts after every real queue number.
func ParseQueueNumber(raw any) int64 {
	switch v := raw.(type) {
	case int64:
		return max(v, 0)
	case int:
		return max(int64(v), 0)
	case float64:
		if v < 0 {
			return 0
		}
		return int64(v)
	case string:
		var n int64
		var seen bool
		for _, r := range v {
			if r >= '0' && r <= '9' {
				seen = true
				n = n*10 + int64(r-'0')
				continue
			}
			if seen {
				break
			}
		}
		if !seen {
			return 0
		}
		return n
	default:
		return 0
	}
}

// CompareByQueueNumber orders appointments by queue number ascending, with
// unparseable legacy numbers (0) after everything else. Ties fall back to
// booking time, then ID, so the order is total and stable across loads.
func CompareByQueueNumber(a, b *Appointment) int {
	switch {
	case a.QueueNumber > 0 && b.QueueNumber > 0:
		if a.QueueNumber != b.QueueNumber {
			if a.QueueNumber < b.QueueNumber {
				return -1
			}
			return 1
		}
	case a.QueueNumber > 0:
		return -1
	case b.QueueNumber > 0:
		return 1
	}
	if !a.BookedAt.Equal(b.BookedAt) {
		if a.BookedAt.Before(b.BookedAt) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}
