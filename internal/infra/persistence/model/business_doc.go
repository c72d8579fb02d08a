// Package model contains the Firestore-specific document structs. Field
// names match the live collections, which predate this service, so some of
// them differ from the Go entity naming.
package model

import (
	"time"

	"lineless/internal/domain/entity"
)

// BusinessDoc is the Firestore document for the 'businesses' collection.
// The counter fields 'count' and 'currentToken' are typed 'any' on read
// because some historical documents stored them as strings; writes always
// store integers.
type BusinessDoc struct {
	BusinessName    string     `firestore:"businessName"`
	ServiceCategory string     `firestore:"serviceCategory,omitempty"`
	ProviderID      string     `firestore:"providerId"`
	Latitude        *float64   `firestore:"latitude,omitempty"`
	Longitude       *float64   `firestore:"longitude,omitempty"`
	OpenTime        string     `firestore:"openTime,omitempty"`
	CloseTime       string     `firestore:"closeTime,omitempty"`
	Description     string     `firestore:"description,omitempty"`
	CapacityPerHour int        `firestore:"capacityPerHour,omitempty"`
	Count           any        `firestore:"count"`
	CurrentToken    any        `firestore:"currentToken"`
	DisplayStatus   string     `firestore:"displayStatus,omitempty"`
	CreatedAt       *time.Time `firestore:"createdAt,omitempty"`
}

// CollectionBusinesses is the Firestore collection name.
const CollectionBusinesses = "businesses"

// NewBusinessDoc converts a domain entity into its document form.
func NewBusinessDoc(b *entity.Business) *BusinessDoc {
	doc := &BusinessDoc{
		BusinessName:    b.Name,
		ServiceCategory: b.ServiceCategory,
		ProviderID:      b.ProviderID,
		Latitude:        b.Latitude,
		Longitude:       b.Longitude,
		OpenTime:        b.OpenTime,
		CloseTime:       b.CloseTime,
		Description:     b.Description,
		CapacityPerHour: b.CapacityPerHour,
		Count:           b.TokensIssued,
		CurrentToken:    b.CurrentToken,
		DisplayStatus:   b.DisplayStatus,
	}
	if !b.CreatedAt.IsZero() {
		createdAt := b.CreatedAt
		doc.CreatedAt = &createdAt
	}

	return doc
}

// ToEntity converts the document back into a domain entity.
func (d *BusinessDoc) ToEntity(id string) *entity.Business {
	b := &entity.Business{
		ID:              id,
		Name:            d.BusinessName,
		ServiceCategory: d.ServiceCategory,
		ProviderID:      d.ProviderID,
		Latitude:        d.Latitude,
		Longitude:       d.Longitude,
		OpenTime:        d.OpenTime,
		CloseTime:       d.CloseTime,
		Description:     d.Description,
		CapacityPerHour: d.CapacityPerHour,
		TokensIssued:    entity.ParseQueueNumber(d.Count),
		CurrentToken:    entity.ParseQueueNumber(d.CurrentToken),
		DisplayStatus:   d.DisplayStatus,
	}
	if d.CreatedAt != nil {
		b.CreatedAt = *d.CreatedAt
	}

	return b
}
