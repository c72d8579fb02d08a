package model

import (
	"time"

	"lineless/internal/domain/entity"
)

// CollectionAppointments is the Firestore collection name.
const CollectionAppointments = "appointments"

// AppointmentDoc is the Firestore document for the 'appointments' collection.
// QueueNumber is typed 'any' on read because historical documents stored it
// as a string (sometimes with prose around the digits); writes always store
// an integer. Status likewise passes through NormalizeStatus to absorb the
// legacy aliases.
type AppointmentDoc struct {
	BusinessID   string     `firestore:"businessId"`
	BusinessName string     `firestore:"businessName,omitempty"`
	ClientName   string     `firestore:"clientName,omitempty"`
	ClientUserID string     `firestore:"userId"`
	QueueNumber  any        `firestore:"queueNumber"`
	Status       string     `firestore:"status"`
	BookedAt     *time.Time `firestore:"bookedAt,omitempty"`
}

// NewAppointmentDoc converts a domain entity into its document form.
func NewAppointmentDoc(a *entity.Appointment) *AppointmentDoc {
	doc := &AppointmentDoc{
		BusinessID:   a.BusinessID,
		BusinessName: a.BusinessName,
		ClientName:   a.ClientName,
		ClientUserID: a.ClientUserID,
		QueueNumber:  a.QueueNumber,
		Status:       string(a.Status),
	}
	if !a.BookedAt.IsZero() {
		bookedAt := a.BookedAt
		doc.BookedAt = &bookedAt
	}

	return doc
}

// ToEntity converts the document back into a domain entity, normalizing the
// legacy queue number and status encodings at the boundary.
func (d *AppointmentDoc) ToEntity(id string) *entity.Appointment {
	a := &entity.Appointment{
		ID:           id,
		BusinessID:   d.BusinessID,
		BusinessName: d.BusinessName,
		ClientName:   d.ClientName,
		ClientUserID: d.ClientUserID,
		QueueNumber:  entity.ParseQueueNumber(d.QueueNumber),
		Status:       entity.NormalizeStatus(d.Status),
	}
	if d.BookedAt != nil {
		a.BookedAt = *d.BookedAt
	}

	return a
}
