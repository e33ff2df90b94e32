package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/config"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/domain"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/repository"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/repository/dao"
)

var testNow = time.Date(2026, 10, 16, 19, 0, 0, 0, time.UTC)

func testTicketConfig() *config.TicketConfig {
	return &config.TicketConfig{
		IDPrefix:      "TKT",
		KeyBytes:      32,
		MaxIDAttempts: 5,
		QRSize:        128,
		DefaultAgent:  "Agent",
	}
}

type fakeRecorder struct {
	issued []domain.Category
	scans  []domain.ScanReason
}

func (r *fakeRecorder) TicketIssued(c domain.Category)   { r.issued = append(r.issued, c) }
func (r *fakeRecorder) ScanCompleted(s domain.ScanReason) { r.scans = append(r.scans, s) }

type fakeNotifier struct {
	events []domain.ScanEvent
}

func (n *fakeNotifier) NotifyScan(e domain.ScanEvent) { n.events = append(n.events, e) }

// failingStore simulates an unreachable backend.
type failingStore struct {
	err error
}

func (f failingStore) Put(context.Context, domain.Ticket) error { return f.err }
func (f failingStore) Get(context.Context, string) (domain.Ticket, error) {
	return domain.Ticket{}, f.err
}
func (f failingStore) Update(context.Context, string, func(*domain.Ticket) error) (domain.Ticket, error) {
	return domain.Ticket{}, f.err
}
func (f failingStore) List(context.Context) ([]domain.Ticket, error) { return nil, f.err }

func setupTestService() (*TicketService, *fakeRecorder, *fakeNotifier) {
	recorder := &fakeRecorder{}
	notifier := &fakeNotifier{}
	store := repository.NewTicketRepository(dao.NewMemoryTicketDAO(), nil)

	s := NewTicketService(store, testTicketConfig(), recorder, notifier)
	s.now = func() time.Time { return testNow }

	return s, recorder, notifier
}

func TestTicketService_GetPrintable(t *testing.T) {
	s, _, _ := setupTestService()
	ctx := context.Background()

	issued, err := s.Issue(ctx, IssueInput{Name: "Alice", Category: "VIP", Seat: "A1"})
	require.NoError(t, err)

	got, err := s.GetPrintable(ctx, issued.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.QRData, got.QRData)
	assert.Equal(t, issued.QRImage, got.QRImage)
	assert.Empty(t, got.Ticket.SecretKey)

	_, err = s.GetPrintable(ctx, "TKT-missing")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestTicketService_ListRedactsKeys(t *testing.T) {
	s, _, _ := setupTestService()
	ctx := context.Background()

	for _, name := range []string{"Alice", "Bob", "Cara"} {
		_, err := s.Issue(ctx, IssueInput{Name: name, Category: "Standard", Seat: "S1"})
		require.NoError(t, err)
	}

	tickets, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	for i, name := range []string{"Alice", "Bob", "Cara"} {
		assert.Equal(t, name, tickets[i].Name)
		assert.Empty(t, tickets[i].SecretKey)
	}
}

func TestTicketService_StoreFailuresPropagate(t *testing.T) {
	storeErr := errors.New("connection refused")
	s := NewTicketService(failingStore{err: storeErr}, testTicketConfig(), nil, nil)
	ctx := context.Background()

	_, err := s.Issue(ctx, IssueInput{Name: "Alice", Category: "VIP", Seat: "A1"})
	assert.ErrorIs(t, err, storeErr)

	_, err = s.Scan(ctx, ScanInput{TicketID: "TKT-1", Key: "k"})
	assert.ErrorIs(t, err, storeErr)

	_, err = s.List(ctx)
	assert.ErrorIs(t, err, storeErr)

	_, err = s.Stats(ctx)
	assert.ErrorIs(t, err, storeErr)

	_, err = s.GetPrintable(ctx, "TKT-1")
	assert.ErrorIs(t, err, storeErr)
}
