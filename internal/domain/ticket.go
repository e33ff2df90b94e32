package domain

import "time"

type Category string

const (
	CategoryVIP      Category = "VIP"
	CategoryGold     Category = "Gold"
	CategoryStandard Category = "Standard"
)

// Categories lists every ticket tier in display order.
var Categories = []Category{CategoryVIP, CategoryGold, CategoryStandard}

// ParseCategory matches s exactly against the known tiers.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type Ticket struct {
	ID        string     `json:"ticket_id"`
	SecretKey string     `json:"-"`
	Name      string     `json:"name"`
	Category  Category   `json:"category"`
	Seat      string     `json:"seat"`
	CreatedAt time.Time  `json:"created_at"`
	IsScanned bool       `json:"is_scanned"`
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
	ScannedBy string     `json:"scanned_by,omitempty"`
}

// Redacted returns a copy of t without the secret key.
func (t Ticket) Redacted() Ticket {
	t.SecretKey = ""
	return t
}

// PrintableTicket is a ticket together with its QR credential. It is only
// produced for the issuing response and for reprints.
type PrintableTicket struct {
	Ticket  Ticket `json:"ticket"`
	QRData  string `json:"qr_data"`
	QRImage string `json:"qr_code"`
}
