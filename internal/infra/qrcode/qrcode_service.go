// Package qrcode renders the printable codes businesses post at their door.
package qrcode

import (
	"encoding/json"
	"fmt"
	"strings"

	"lineless/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// QRCodeData represents the QR code data structure
type QRCodeData struct {
	BusinessID string `json:"business_id"`
	Type       string `json:"type"`
	BookingURL string `json:"booking_url,omitempty"`
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel, baseURL string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
		baseURL:              strings.TrimSuffix(baseURL, "/"),
	}
}

// GenerateBookingQR generates the QR code clients scan to book at a business
func (s *qrcodeService) GenerateBookingQR(businessID string) ([]byte, error) {
	// Create QR code data
	data := QRCodeData{
		BusinessID: businessID,
		Type:       "booking",
	}
	if s.baseURL != "" {
		data.BookingURL = s.baseURL + "/book/" + businessID
	}

	// Convert to JSON
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR code data: %w", err)
	}

	// Generate QR code
	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// Generate PNG image
	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}

// ParseBookingQR parses QR code data and returns the business ID
func (s *qrcodeService) ParseBookingQR(qrData string) (string, error) {
	var data QRCodeData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return "", fmt.Errorf("failed to unmarshal QR code data: %w", err)
	}

	// Validate type
	if data.Type != "booking" {
		return "", fmt.Errorf("invalid QR code type: %s", data.Type)
	}

	if data.BusinessID == "" {
		return "", fmt.Errorf("QR code is missing the business ID")
	}

	return data.BusinessID, nil
}
