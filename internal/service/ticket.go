package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/config"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/qr"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/repository"
)

var (
	ErrTicketNotFound = repository.ErrTicketNotFound
	ErrDuplicateID    = repository.ErrDuplicateTicketID

	ErrInvalidInput     = errors.New("invalid input")
	ErrIDSpaceExhausted = errors.New("could not allocate a unique ticket id")
)

type TicketStore interface {
	Put(ctx context.Context, ticket domain.Ticket) error
	Get(ctx context.Context, id string) (domain.Ticket, error)
	Update(ctx context.Context, id string, fn func(*domain.Ticket) error) (domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
}

// ScanRecorder receives issuance and scan outcomes for metrics.
type ScanRecorder interface {
	TicketIssued(category domain.Category)
	ScanCompleted(reason domain.ScanReason)
}

// ScanNotifier publishes scan events to live listeners. Implementations must
// not block.
type ScanNotifier interface {
	NotifyScan(event domain.ScanEvent)
}

type noopRecorder struct{}

func (noopRecorder) TicketIssued(domain.Category)   {}
func (noopRecorder) ScanCompleted(domain.ScanReason) {}

type noopNotifier struct{}

func (noopNotifier) NotifyScan(domain.ScanEvent) {}

type TicketService struct {
	store    TicketStore
	conf     *config.TicketConfig
	recorder ScanRecorder
	notifier ScanNotifier

	now    func() time.Time
	random io.Reader
}

func NewTicketService(store TicketStore, conf *config.TicketConfig, recorder ScanRecorder, notifier ScanNotifier) *TicketService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}

	return &TicketService{
		store:    store,
		conf:     conf,
		recorder: recorder,
		notifier: notifier,
		now:      time.Now,
		random:   rand.Reader,
	}
}

// GetPrintable returns a ticket with its QR credential for reprinting.
func (s *TicketService) GetPrintable(ctx context.Context, id string) (domain.PrintableTicket, error) {
	ticket, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.PrintableTicket{}, fmt.Errorf("s.store.Get -> %w", err)
	}

	return s.printable(ticket)
}

// List returns every ticket in creation order without secret keys.
func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.store.List -> %w", err)
	}

	for i := range tickets {
		tickets[i] = tickets[i].Redacted()
	}

	return tickets, nil
}

func (s *TicketService) printable(ticket domain.Ticket) (domain.PrintableTicket, error) {
	data, err := qr.Encode(ticket.ID, ticket.SecretKey)
	if err != nil {
		return domain.PrintableTicket{}, err
	}

	image, err := qr.DataURL(data, s.conf.QRSize)
	if err != nil {
		return domain.PrintableTicket{}, err
	}

	return domain.PrintableTicket{
		Ticket:  ticket.Redacted(),
		QRData:  data,
		QRImage: image,
	}, nil
}
