package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
)

// Stats tallies the store as it is right now. Nothing is cached.
func (s *TicketService) Stats(ctx context.Context) (domain.Stats, error) {
	tickets, err := s.store.List(ctx)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("s.store.List -> %w", err)
	}

	return ComputeStats(tickets), nil
}

func ComputeStats(tickets []domain.Ticket) domain.Stats {
	stats := domain.Stats{Total: len(tickets)}

	for _, t := range tickets {
		if t.IsScanned {
			stats.Scanned++
		}

		switch t.Category {
		case domain.CategoryVIP:
			stats.VIP++
		case domain.CategoryGold:
			stats.Gold++
		case domain.CategoryStandard:
			stats.Standard++
		}
	}

	stats.Remaining = stats.Total - stats.Scanned
	stats.AttendanceRate = AttendanceRate(stats.Scanned, stats.Total)

	return stats
}

// AttendanceRate is the scanned share as a whole percentage, halves rounded
// away from zero. An empty event has a rate of 0.
func AttendanceRate(scanned, total int) int {
	if total == 0 {
		return 0
	}

	// QuoRem at precision 0 is exact, so the only rounding is the half step
	// below. Counts are never negative, so half away from zero is half up.
	den := decimal.NewFromInt(int64(total))
	rate, rem := decimal.NewFromInt(int64(scanned)).
		Mul(decimal.NewFromInt(100)).
		QuoRem(den, 0)
	if rem.Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(den) {
		rate = rate.Add(decimal.NewFromInt(1))
	}

	return int(rate.IntPart())
}
