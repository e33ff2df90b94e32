package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
)

type ScanInput struct {
	TicketID  string
	Key       string
	ScannedBy string
}

// scanRejection aborts a store update with the reason the scan was refused.
type scanRejection struct {
	reason domain.ScanReason
}

func (r *scanRejection) Error() string {
	return r.reason.Message()
}

// Scan validates a ticket at the door. Refusals are reported through the
// result; an error means the store could not be reached.
func (s *TicketService) Scan(ctx context.Context, in ScanInput) (domain.ScanResult, error) {
	id := strings.TrimSpace(in.TicketID)
	if id == "" {
		return domain.ScanResult{}, fmt.Errorf("%w: ticket id is required", ErrInvalidInput)
	}

	agent := strings.TrimSpace(in.ScannedBy)
	if agent == "" {
		agent = s.conf.DefaultAgent
	}

	current, err := s.store.Update(ctx, id, func(t *domain.Ticket) error {
		if !keysMatch(t.SecretKey, in.Key) {
			return &scanRejection{reason: domain.ScanInvalidCredentials}
		}
		if t.IsScanned {
			return &scanRejection{reason: domain.ScanAlreadyScanned}
		}

		scannedAt := s.now().UTC()
		t.IsScanned = true
		t.ScannedAt = &scannedAt
		t.ScannedBy = agent
		return nil
	})

	var result domain.ScanResult
	var rejection *scanRejection
	switch {
	case err == nil:
		ticket := current.Redacted()
		result = domain.NewScanResult(domain.ScanSuccess, &ticket)
	case errors.Is(err, ErrTicketNotFound):
		result = domain.NewScanResult(domain.ScanTicketNotFound, nil)
	case errors.As(err, &rejection):
		var ticket *domain.Ticket
		if rejection.reason == domain.ScanAlreadyScanned {
			redacted := current.Redacted()
			ticket = &redacted
		}
		result = domain.NewScanResult(rejection.reason, ticket)
	default:
		return domain.ScanResult{}, fmt.Errorf("s.store.Update -> %w", err)
	}

	s.recorder.ScanCompleted(result.Reason)
	s.notifier.NotifyScan(domain.ScanEvent{
		TicketID:  id,
		Valid:     result.Valid,
		Reason:    result.Reason,
		ScannedBy: agent,
		At:        s.now().UTC(),
	})

	return result, nil
}

// keysMatch compares in constant time. A blank presented key never matches.
func keysMatch(stored, presented string) bool {
	if presented == "" || stored == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
