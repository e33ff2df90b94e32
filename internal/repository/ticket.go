package repository

import (
	"context"
	"fmt"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/repository/dao"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/sealer"
)

var (
	ErrTicketNotFound    = dao.ErrTicketNotFound
	ErrDuplicateTicketID = dao.ErrDuplicateTicketID
)

type TicketDAO interface {
	Insert(ctx context.Context, ticket dao.Ticket) (dao.Ticket, error)
	FindByTicketID(ctx context.Context, ticketID string) (dao.Ticket, error)
	FindAll(ctx context.Context) ([]dao.Ticket, error)
	UpdateByTicketID(ctx context.Context, ticketID string, fn func(*dao.Ticket) error) (dao.Ticket, error)
}

// TicketRepository maps tickets between the domain and the storage model.
// Secret keys are sealed on the way in and opened on the way out.
type TicketRepository struct {
	dao    TicketDAO
	sealer sealer.Sealer
}

func NewTicketRepository(dao TicketDAO, s sealer.Sealer) *TicketRepository {
	if s == nil {
		s = sealer.Noop{}
	}

	return &TicketRepository{
		dao:    dao,
		sealer: s,
	}
}

func (r *TicketRepository) domainToDao(t domain.Ticket) (dao.Ticket, error) {
	sealedKey, err := r.sealer.Seal(t.SecretKey)
	if err != nil {
		return dao.Ticket{}, fmt.Errorf("r.sealer.Seal -> %w", err)
	}

	return dao.Ticket{
		TicketID:  t.ID,
		SecretKey: sealedKey,
		Name:      t.Name,
		Category:  string(t.Category),
		Seat:      t.Seat,
		IsScanned: t.IsScanned,
		ScannedAt: t.ScannedAt,
		ScannedBy: t.ScannedBy,
		CreatedAt: t.CreatedAt,
	}, nil
}

func (r *TicketRepository) daoToDomain(t dao.Ticket) (domain.Ticket, error) {
	key, err := r.sealer.Open(t.SecretKey)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.sealer.Open -> %w", err)
	}

	return domain.Ticket{
		ID:        t.TicketID,
		SecretKey: key,
		Name:      t.Name,
		Category:  domain.Category(t.Category),
		Seat:      t.Seat,
		CreatedAt: t.CreatedAt,
		IsScanned: t.IsScanned,
		ScannedAt: t.ScannedAt,
		ScannedBy: t.ScannedBy,
	}, nil
}

func (r *TicketRepository) Put(ctx context.Context, ticket domain.Ticket) error {
	daoTicket, err := r.domainToDao(ticket)
	if err != nil {
		return err
	}

	if _, err = r.dao.Insert(ctx, daoTicket); err != nil {
		return fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return nil
}

func (r *TicketRepository) Get(ctx context.Context, id string) (domain.Ticket, error) {
	ticket, err := r.dao.FindByTicketID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByTicketID -> %w", err)
	}

	return r.daoToDomain(ticket)
}

func (r *TicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	daoTickets, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	tickets := make([]domain.Ticket, len(daoTickets))
	for i, t := range daoTickets {
		ticket, err := r.daoToDomain(t)
		if err != nil {
			return nil, err
		}
		tickets[i] = ticket
	}

	return tickets, nil
}

// Update runs fn against the current ticket under the backend's per-record
// lock. Only the scan fields of the mutated ticket are stored. When fn fails
// the unchanged ticket is returned together with fn's error.
func (r *TicketRepository) Update(ctx context.Context, id string, fn func(*domain.Ticket) error) (domain.Ticket, error) {
	var openErr error

	updated, err := r.dao.UpdateByTicketID(ctx, id, func(stored *dao.Ticket) error {
		ticket, err := r.daoToDomain(*stored)
		if err != nil {
			openErr = err
			return err
		}

		if err := fn(&ticket); err != nil {
			return err
		}

		stored.IsScanned = ticket.IsScanned
		stored.ScannedAt = ticket.ScannedAt
		stored.ScannedBy = ticket.ScannedBy
		return nil
	})
	if openErr != nil {
		return domain.Ticket{}, openErr
	}

	current := domain.Ticket{}
	if updated.TicketID != "" {
		var convErr error
		current, convErr = r.daoToDomain(updated)
		if convErr != nil {
			return domain.Ticket{}, convErr
		}
	}

	if err != nil {
		return current, fmt.Errorf("r.dao.UpdateByTicketID -> %w", err)
	}

	return current, nil
}
