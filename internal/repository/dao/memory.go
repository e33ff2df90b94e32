package dao

import (
	"context"
	"sync"
)

type memoryRecord struct {
	mu     sync.Mutex
	ticket Ticket
}

// MemoryTicketDAO keeps tickets in process memory. The index lock is only
// held to find or add a record; updates lock the single record they touch.
type MemoryTicketDAO struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	order   []*memoryRecord
	seq     uint64
}

func NewMemoryTicketDAO() *MemoryTicketDAO {
	return &MemoryTicketDAO{
		records: make(map[string]*memoryRecord),
	}
}

func (d *MemoryTicketDAO) Insert(_ context.Context, ticket Ticket) (Ticket, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.records[ticket.TicketID]; ok {
		return Ticket{}, ErrDuplicateTicketID
	}

	d.seq++
	ticket.Seq = d.seq
	rec := &memoryRecord{ticket: ticket.clone()}
	d.records[ticket.TicketID] = rec
	d.order = append(d.order, rec)

	return ticket, nil
}

func (d *MemoryTicketDAO) lookup(ticketID string) (*memoryRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rec, ok := d.records[ticketID]
	return rec, ok
}

func (rec *memoryRecord) snapshot() Ticket {
	rec.mu.Lock()
	defer rec.mu.Unlock()

	return rec.ticket.clone()
}

func (d *MemoryTicketDAO) FindByTicketID(_ context.Context, ticketID string) (Ticket, error) {
	rec, ok := d.lookup(ticketID)
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}

	return rec.snapshot(), nil
}

func (d *MemoryTicketDAO) FindAll(_ context.Context) ([]Ticket, error) {
	d.mu.RLock()
	recs := make([]*memoryRecord, len(d.order))
	copy(recs, d.order)
	d.mu.RUnlock()

	tickets := make([]Ticket, 0, len(recs))
	for _, rec := range recs {
		tickets = append(tickets, rec.snapshot())
	}

	return tickets, nil
}

func (d *MemoryTicketDAO) UpdateByTicketID(_ context.Context, ticketID string, fn func(*Ticket) error) (Ticket, error) {
	rec, ok := d.lookup(ticketID)
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	next := rec.ticket.clone()
	if err := fn(&next); err != nil {
		return rec.ticket.clone(), err
	}

	rec.ticket.applyScan(next)
	return rec.ticket.clone(), nil
}
