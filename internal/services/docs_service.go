package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders booking e-tickets and invoices as PDF.
type DocsService struct {
	Bookings  BookingService
	RequestID string
	Loader    func(ctx context.Context, ref string) (models.Booking, error)
}

func (s DocsService) GenerateETicket(ctx context.Context, ref string) ([]byte, string, error) {
	b, err := s.load(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("ref=%s seats=%d", b.Ref, len(b.Seats)))
	return buildETicketPDF(b)
}

func (s DocsService) GenerateInvoice(ctx context.Context, ref string) ([]byte, string, error) {
	b, err := s.load(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_invoice", fmt.Sprintf("ref=%s amount=%d", b.Ref, b.Total))
	return buildInvoicePDF(b)
}

func (s DocsService) load(ctx context.Context, ref string) (models.Booking, error) {
	if strings.TrimSpace(ref) == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking_ref", Msg: "reference is required"}
	}
	if s.Loader != nil {
		return s.Loader(ctx, ref)
	}
	if s.Bookings.Bookings == nil {
		return models.Booking{}, domain.InternalError{Msg: "booking store not configured"}
	}
	return s.Bookings.Detail(ctx, ref)
}

func buildETicketPDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	var j models.Journey
	if b.Journey != nil {
		j = *b.Journey
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Ref    : %s", safe(b.Ref, "-")),
		fmt.Sprintf("Status         : %s", safe(b.PaymentStatus, "-")),
		fmt.Sprintf("Route          : %s -> %s", safe(j.RouteFrom, "-"), safe(j.RouteTo, "-")),
		fmt.Sprintf("Date/Time      : %s %s", safe(dateOnly(j.TripDate), "-"), safe(timeHM(j.DepartureTime), "-")),
		fmt.Sprintf("Operator       : %s %s", safe(j.OperatorName, "-"), strings.TrimSpace(j.BusType)),
		fmt.Sprintf("Bus            : %s", safe(j.BusID, "-")),
		fmt.Sprintf("Boarding       : %s", safe(b.BoardingPoint, "-")),
		fmt.Sprintf("Dropping       : %s", safe(b.DroppingPoint, "-")),
		fmt.Sprintf("Contact        : %s (%s)", safe(b.Contact.Name, "-"), safe(b.Contact.Phone, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passengers")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	codeBySeat := map[string]string{}
	for _, seat := range b.Seats {
		codeBySeat[seat.SeatID] = seat.SeatCode
	}
	for i, p := range b.Passengers {
		pdf.Cell(0, 6, fmt.Sprintf("%d) %s, %d, %s  Seat %s", i+1, safe(p.Name, "-"), p.Age, safe(p.Gender, "-"), safe(codeBySeat[p.SeatID], "-")))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+pdfMoney(b.Total))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please carry a valid photo ID and show this e-ticket at boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(b.Ref))
	return buf.Bytes(), filename, nil
}

func buildInvoicePDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice No  : INV-"+safeFilenamePart(b.Ref))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Date        : "+safe(b.CreatedAt, "-"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Name   : %s", safe(b.Contact.Name, "-")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Phone  : %s", safe(b.Contact.Phone, "-")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Items:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for i, seat := range b.Seats {
		pdf.Cell(0, 6, fmt.Sprintf("%d) Seat %s (%s, %s)  %s", i+1, safe(seat.SeatCode, "-"), safe(seat.Deck, "-"), safe(seat.Position, "-"), pdfMoney(seat.Price)))
		pdf.Ln(6)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+pdfMoney(b.Total))
	pdf.Ln(12)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("INVOICE_%s.pdf", safeFilenamePart(b.Ref))
	return buf.Bytes(), filename, nil
}

// pdfMoney spells the rupee sign out; the core PDF fonts have no glyph for it.
func pdfMoney(m domain.Money) string {
	return "Rs " + strings.TrimPrefix(utils.FormatMoney(m), "₹")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}

func timeHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
