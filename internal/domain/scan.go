package domain

import "time"

type ScanReason string

const (
	ScanSuccess            ScanReason = "Success"
	ScanTicketNotFound     ScanReason = "TicketNotFound"
	ScanInvalidCredentials ScanReason = "InvalidCredentials"
	ScanAlreadyScanned     ScanReason = "AlreadyScanned"
)

// Message is the text shown to the door agent.
func (r ScanReason) Message() string {
	switch r {
	case ScanSuccess:
		return "Valid ticket, entry granted"
	case ScanTicketNotFound:
		return "Ticket not found"
	case ScanInvalidCredentials:
		return "Invalid ticket credentials"
	case ScanAlreadyScanned:
		return "Ticket already scanned"
	default:
		return string(r)
	}
}

type ScanResult struct {
	Valid   bool       `json:"valid"`
	Reason  ScanReason `json:"reason"`
	Message string     `json:"message"`
	Ticket  *Ticket    `json:"ticket,omitempty"`
}

func NewScanResult(reason ScanReason, ticket *Ticket) ScanResult {
	return ScanResult{
		Valid:   reason == ScanSuccess,
		Reason:  reason,
		Message: reason.Message(),
		Ticket:  ticket,
	}
}

// ScanEvent is published on the live feed after every scan attempt.
type ScanEvent struct {
	TicketID  string     `json:"ticket_id"`
	Valid     bool       `json:"valid"`
	Reason    ScanReason `json:"reason"`
	ScannedBy string     `json:"scanned_by"`
	At        time.Time  `json:"at"`
}
