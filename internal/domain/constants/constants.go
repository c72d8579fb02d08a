// Package constants holds shared provider names and domain constants.
package constants

const (
	// StoreProviderFirestore selects the Cloud Firestore persistence backend.
	StoreProviderFirestore = "firestore"
	// StoreProviderMemory selects the in-memory persistence backend used for
	// local development and tests.
	StoreProviderMemory = "memory"

	// PubSubProviderLocal selects the local HTTP event publisher.
	PubSubProviderLocal = "local"
	// PubSubProviderGoogle selects the Google Cloud Pub/Sub event publisher.
	PubSubProviderGoogle = "google"

	// RoleProvider marks an authenticated account that manages businesses.
	RoleProvider = "provider"
	// RoleClient marks an authenticated account that books appointments.
	RoleClient = "client"
)
