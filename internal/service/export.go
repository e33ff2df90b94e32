package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
)

var exportHeader = []string{
	"ticket_id", "name", "category", "seat", "created_at", "is_scanned", "scanned_at", "scanned_by",
}

// Export writes every ticket as CSV in creation order. Secret keys are never
// written.
func (s *TicketService) Export(ctx context.Context, w io.Writer) error {
	tickets, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("s.store.List -> %w", err)
	}

	return WriteCSV(w, tickets)
}

func WriteCSV(w io.Writer, tickets []domain.Ticket) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("cw.Write -> %w", err)
	}

	for _, t := range tickets {
		scannedAt := ""
		if t.ScannedAt != nil {
			scannedAt = t.ScannedAt.UTC().Format(time.RFC3339)
		}

		row := []string{
			t.ID,
			t.Name,
			string(t.Category),
			t.Seat,
			t.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatBool(t.IsScanned),
			scannedAt,
			t.ScannedBy,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("cw.Write -> %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("cw.Flush -> %w", err)
	}

	return nil
}
