// Package entity contains the core business objects of the project.
package entity

import "time"

// Business represents a registered service provider location with its own
// virtual queue.
type Business struct {
	ID              string    `json:"id"`                  // Document ID assigned by the store.
	Name            string    `json:"business_name"`       // Display name shown to clients.
	ServiceCategory string    `json:"service_category"`    // Category such as "salon", "clinic", "bank".
	ProviderID      string    `json:"provider_id"`         // ID of the provider account that owns this business.
	Latitude        *float64  `json:"latitude"`            // Geographic latitude, nil when not geocoded.
	Longitude       *float64  `json:"longitude"`           // Geographic longitude, nil when not geocoded.
	OpenTime        string    `json:"open_time"`           // Opening time in "HH:MM".
	CloseTime       string    `json:"close_time"`          // Closing time in "HH:MM".
	Description     string    `json:"description"`         // Free-form description of the business.
	CapacityPerHour int       `json:"capacity_per_hour"`   // Advertised serving capacity, 0 when unknown.
	TokensIssued    int64     `json:"tokens_issued"`       // Cumulative queue numbers ever issued; only a reset decrements it.
	CurrentToken    int64     `json:"current_token"`       // Queue number being served right now, 0 when the queue is idle.
	DisplayStatus   string    `json:"display_status"`      // Free-form status line, display only.
	CreatedAt       time.Time `json:"created_at"`          // Timestamp of registration.
}

// HasLocation reports whether the business carries usable coordinates.
func (b *Business) HasLocation() bool {
	return b.Latitude != nil && b.Longitude != nil
}
