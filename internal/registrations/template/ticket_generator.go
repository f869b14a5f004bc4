package template

import (
	"bytes"
	"fmt"
	"image/png"

	"campus-events/internal/models"

	"github.com/signintech/gopdf"
)

type TicketPDFGenerator struct {
	FontPath string
}

func NewTicketPDFGenerator(fontPath string) *TicketPDFGenerator {
	return &TicketPDFGenerator{FontPath: fontPath}
}

// Generate renders a one-page A4 ticket for reg at event with the QR image embedded.
func (g *TicketPDFGenerator) Generate(reg *models.Registration, event *models.Event, qrCode []byte) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := pdf.AddTTFFont("ticket", g.FontPath); err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", g.FontPath, err)
	}
	if err := pdf.SetFont("ticket", "", 20); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}

	addHeader(pdf, event)

	if err := pdf.SetFont("ticket", "", 12); err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}
	pdf.SetY(90)
	addTicketInfo(pdf, reg, event)

	if len(qrCode) > 0 {
		pdf.SetY(pdf.GetY() + 20)
		addQRCode(pdf, qrCode)
	}

	pdf.SetY(760)
	addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func addHeader(pdf *gopdf.GoPdf, event *models.Event) {
	pdf.SetX(40)
	pdf.SetY(40)
	pdf.Cell(nil, event.Title)
}

func addTicketInfo(pdf *gopdf.GoPdf, reg *models.Registration, event *models.Event) {
	info := []struct {
		Label string
		Value string
	}{
		{"Ticket code", reg.TicketCode},
		{"Attendee", reg.Name},
		{"Email", reg.Email},
		{"Starts", event.StartsAt.Format("Mon 02 Jan 2006, 15:04 MST")},
		{"Ends", event.EndsAt.Format("Mon 02 Jan 2006, 15:04 MST")},
		{"Venue", event.Location},
	}

	for _, item := range info {
		if item.Value == "" {
			continue
		}
		pdf.SetX(40)
		pdf.Cell(nil, item.Label+": "+item.Value)
		pdf.Br(20)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		pdf.SetX(40)
		pdf.Cell(nil, "QR code unavailable, show your ticket code at the door")
		return
	}

	rect := &gopdf.Rect{W: 180, H: 180}
	if err := pdf.ImageFrom(img, 40, pdf.GetY(), rect); err != nil {
		pdf.SetX(40)
		pdf.Cell(nil, "QR code unavailable, show your ticket code at the door")
	}
}

func addFooter(pdf *gopdf.GoPdf) {
	pdf.SetX(40)
	pdf.Cell(nil, "Present this ticket at the entrance. One scan per attendee.")
}
