package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
)

const (
	idSuffixLen = 6
	base36      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// largest multiple of 36 that fits in a byte; bytes above it are rejected
	// so every suffix character is uniform
	base36Limit = 252
)

type IssueInput struct {
	Name     string
	Category string
	Seat     string
}

func (in IssueInput) normalize() (IssueInput, domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Seat = strings.TrimSpace(in.Seat)
	in.Category = strings.TrimSpace(in.Category)

	if in.Name == "" {
		return in, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Seat == "" {
		return in, "", fmt.Errorf("%w: seat is required", ErrInvalidInput)
	}

	category, ok := domain.ParseCategory(in.Category)
	if !ok {
		return in, "", fmt.Errorf("%w: category must be one of VIP, Gold, Standard", ErrInvalidInput)
	}

	return in, category, nil
}

// Issue mints a new ticket and returns it with its QR credential. Nothing is
// stored when the input is rejected.
func (s *TicketService) Issue(ctx context.Context, in IssueInput) (domain.PrintableTicket, error) {
	in, category, err := in.normalize()
	if err != nil {
		return domain.PrintableTicket{}, err
	}

	key, err := s.newSecretKey()
	if err != nil {
		return domain.PrintableTicket{}, err
	}

	ticket := domain.Ticket{
		SecretKey: key,
		Name:      in.Name,
		Category:  category,
		Seat:      in.Seat,
		CreatedAt: s.now().UTC(),
	}

	for attempt := 1; ; attempt++ {
		ticket.ID, err = s.newTicketID()
		if err != nil {
			return domain.PrintableTicket{}, err
		}

		err = s.store.Put(ctx, ticket)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateID) {
			return domain.PrintableTicket{}, fmt.Errorf("s.store.Put -> %w", err)
		}

		zap.L().Warn("ticket id collision",
			zap.String("ticket_id", ticket.ID),
			zap.Int("attempt", attempt),
		)
		if attempt >= s.conf.MaxIDAttempts {
			return domain.PrintableTicket{}, ErrIDSpaceExhausted
		}
	}

	s.recorder.TicketIssued(category)

	return s.printable(ticket)
}

func (s *TicketService) newSecretKey() (string, error) {
	b := make([]byte, s.conf.KeyBytes)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", fmt.Errorf("io.ReadFull -> %w", err)
	}

	return hex.EncodeToString(b), nil
}

func (s *TicketService) newTicketID() (string, error) {
	suffix := make([]byte, 0, idSuffixLen)
	buf := make([]byte, idSuffixLen)

	for len(suffix) < idSuffixLen {
		if _, err := io.ReadFull(s.random, buf); err != nil {
			return "", fmt.Errorf("io.ReadFull -> %w", err)
		}
		for _, b := range buf {
			if b >= base36Limit || len(suffix) == idSuffixLen {
				continue
			}
			suffix = append(suffix, base36[int(b)%36])
		}
	}

	millis := strings.ToUpper(strconv.FormatInt(s.now().UnixMilli(), 36))

	return s.conf.IDPrefix + "-" + millis + "-" + string(suffix), nil
}
