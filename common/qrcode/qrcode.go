package qrcode

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Standard sizes in pixels
const (
	SizeSmall    = 150
	SizeStandard = 300
	SizeLarge    = 500
)

// GenerateQRCodePngBytes encodes text as a PNG QR code with medium error correction
func GenerateQRCodePngBytes(text string, size int) ([]byte, error) {
	if size <= 0 {
		size = SizeStandard
	}
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pngBytes, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR to PNG: %w", err)
	}
	return pngBytes, nil
}

// GenerateQRCodeBase64 returns a data URI usable directly as an <img> src
func GenerateQRCodeBase64(text string, size int) (string, error) {
	pngBytes, err := GenerateQRCodePngBytes(text, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes), nil
}

// EventPageURL is the public address of an event's detail page
func EventPageURL(publicBaseURL string, eventID int) string {
	return fmt.Sprintf("%s/event/%d", publicBaseURL, eventID)
}

// GenerateEventQRPngBytes encodes the event page link for printed sheets
func GenerateEventQRPngBytes(publicBaseURL string, eventID, size int) ([]byte, error) {
	return GenerateQRCodePngBytes(EventPageURL(publicBaseURL, eventID), size)
}

// GenerateEventQRBase64 encodes the event page link for the share panel
func GenerateEventQRBase64(publicBaseURL string, eventID, size int) (string, error) {
	return GenerateQRCodeBase64(EventPageURL(publicBaseURL, eventID), size)
}
