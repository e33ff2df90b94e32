package response

import (
	"time"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
)

// Ticket is the public view of a ticket. Every multi-word field is written in
// both snake_case and camelCase so older and newer clients can read it.
type Ticket struct {
	TicketID       string          `json:"ticket_id"`
	TicketIDCamel  string          `json:"ticketId"`
	Name           string          `json:"name"`
	Category       domain.Category `json:"category"`
	Seat           string          `json:"seat"`
	CreatedAt      time.Time       `json:"created_at"`
	CreatedAtCamel time.Time       `json:"createdAt"`
	IsScanned      bool            `json:"is_scanned"`
	IsScannedCamel bool            `json:"isScanned"`
	ScannedAt      *time.Time      `json:"scanned_at"`
	ScannedAtCamel *time.Time      `json:"scannedAt"`
	ScannedBy      *string         `json:"scanned_by"`
	ScannedByCamel *string         `json:"scannedBy"`
	QRCode         string          `json:"qr_code,omitempty"`
	QRCodeCamel    string          `json:"qrCode,omitempty"`
	QRData         string          `json:"qr_data,omitempty"`
}

func NewTicket(t domain.Ticket) Ticket {
	var scannedBy *string
	if t.IsScanned {
		scannedBy = &t.ScannedBy
	}

	return Ticket{
		TicketID:       t.ID,
		TicketIDCamel:  t.ID,
		Name:           t.Name,
		Category:       t.Category,
		Seat:           t.Seat,
		CreatedAt:      t.CreatedAt,
		CreatedAtCamel: t.CreatedAt,
		IsScanned:      t.IsScanned,
		IsScannedCamel: t.IsScanned,
		ScannedAt:      t.ScannedAt,
		ScannedAtCamel: t.ScannedAt,
		ScannedBy:      scannedBy,
		ScannedByCamel: scannedBy,
	}
}

func NewPrintableTicket(p domain.PrintableTicket) Ticket {
	t := NewTicket(p.Ticket)
	t.QRCode = p.QRImage
	t.QRCodeCamel = p.QRImage
	t.QRData = p.QRData

	return t
}

func NewTickets(tickets []domain.Ticket) []Ticket {
	views := make([]Ticket, len(tickets))
	for i, t := range tickets {
		views[i] = NewTicket(t)
	}
	return views
}

type CreateTicket struct {
	Success bool   `json:"success"`
	Ticket  Ticket `json:"ticket"`
}

type GetTicket struct {
	Ticket Ticket `json:"ticket"`
}

type ListTickets struct {
	Tickets []Ticket `json:"tickets"`
}

type ScanResult struct {
	Valid   bool              `json:"valid"`
	Reason  domain.ScanReason `json:"reason"`
	Message string            `json:"message"`
	Ticket  *Ticket           `json:"ticket,omitempty"`
}

func NewScanResult(r domain.ScanResult) ScanResult {
	res := ScanResult{
		Valid:   r.Valid,
		Reason:  r.Reason,
		Message: r.Message,
	}
	if r.Ticket != nil {
		t := NewTicket(*r.Ticket)
		res.Ticket = &t
	}

	return res
}

type GetStats struct {
	Stats domain.Stats `json:"stats"`
}
