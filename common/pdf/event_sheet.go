package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// EventSheetData is everything printed on an event sheet
type EventSheetData struct {
	EventID     int
	EventName   string
	EventType   string
	EventDate   string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	Description string

	VenueName string
	Address   string
	City      string
	Country   string

	// BookingNote is printed under the schedule when the venue booking disagrees with it
	BookingNote string

	// Budget rows, already formatted
	VenueCost             string
	BeverageCostPerPerson string
	GuestNumber           string
	TotalBudget           string

	PageURL        string
	QRCodePngBytes []byte
}

// GenerateEventSheetPDF renders a one-page A4 event sheet with a QR code linking to the event page
func GenerateEventSheetPDF(data EventSheetData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(data.EventName), false)
	pdf.AddPage()

	// ========================================
	// HEADER
	// ========================================
	pdf.SetFont("Arial", "B", 22)
	pdf.MultiCell(0, 10, tr(truncate(data.EventName, 60)), "", "L", false)
	if data.EventType != "" {
		pdf.SetFont("Arial", "", 13)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 7, tr(data.EventType), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(3)
	separator(pdf)

	// ========================================
	// SCHEDULE + QR
	// ========================================
	top := pdf.GetY()
	if len(data.QRCodePngBytes) > 0 {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		name := fmt.Sprintf("qr_event_%d", data.EventID)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data.QRCodePngBytes))
		pdf.ImageOptions(name, 150, top, 40, 40, false, opts, 0, "")
	}

	row(pdf, tr, "Date", data.EventDate)
	row(pdf, tr, "Time", fmt.Sprintf("%s - %s", data.StartTime, data.EndTime))
	if data.BookingNote != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(180, 90, 0)
		pdf.MultiCell(120, 5, tr(data.BookingNote), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	venue := "No venue booked"
	if data.VenueName != "" {
		venue = data.VenueName
	}
	row(pdf, tr, "Venue", venue)
	if loc := joinNonEmpty(", ", data.Address, data.City, data.Country); loc != "" {
		row(pdf, tr, "Address", loc)
	}

	if pdf.GetY() < top+44 {
		pdf.SetY(top + 44)
	}
	separator(pdf)

	// ========================================
	// DESCRIPTION
	// ========================================
	if data.Description != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, "About", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 5.5, tr(data.Description), "", "L", false)
		pdf.Ln(3)
		separator(pdf)
	}

	// ========================================
	// BUDGET
	// ========================================
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "Budget", "", 1, "L", false, 0, "")
	if data.TotalBudget == "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 6, "No budget has been set", "", 1, "L", false, 0, "")
	} else {
		budgetRow(pdf, "Venue cost", data.VenueCost)
		budgetRow(pdf, "Beverage cost per person", data.BeverageCostPerPerson)
		budgetRow(pdf, "Guests", data.GuestNumber)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(80, 7, "Total", "T", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, data.TotalBudget, "T", 1, "R", false, 0, "")
	}

	// ========================================
	// FOOTER
	// ========================================
	if data.PageURL != "" {
		pdf.SetY(-25)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, data.PageURL, "", 1, "C", false, 0, data.PageURL)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render event sheet: %w", err)
	}
	return buf.Bytes(), nil
}

func row(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(25, 7, label, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 12)
	pdf.MultiCell(95, 7, tr(value), "", "L", false)
}

func budgetRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(80, 6.5, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6.5, value, "", 1, "R", false, 0, "")
}

func separator(pdf *gofpdf.Fpdf) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.5)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(5)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
