package service

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GenerateBookingQR generates a QR code clients scan to book at a business
	GenerateBookingQR(businessID string) ([]byte, error)

	// ParseBookingQR parses QR code data and returns the business ID
	ParseBookingQR(qrData string) (string, error)
}
