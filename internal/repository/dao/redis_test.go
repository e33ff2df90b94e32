package dao

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedisDAO() (*RedisTicketDAO, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	return NewRedisTicketDAO(client), mock
}

func setupMiniredisDAO(t *testing.T) (*RedisTicketDAO, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisTicketDAO(client), mr, client
}

func insertKeys(id string) []string {
	return []string{"ticket:" + id, "tickets:order"}
}

func encodeForRedis(t *testing.T, ticket Ticket) string {
	t.Helper()
	b, err := json.Marshal(ticket)
	require.NoError(t, err)
	return string(b)
}

func TestRedisTicketDAO_Insert(t *testing.T) {
	d, mock := setupTestRedisDAO()

	ticket := newTestTicket("TKT-1")
	mock.ExpectEvalSha(insertTicketScript.Hash(), insertKeys("TKT-1"), encodeForRedis(t, ticket), "TKT-1").
		SetVal(int64(3))

	inserted, err := d.Insert(context.Background(), ticket)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), inserted.Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTicketDAO_InsertDuplicate(t *testing.T) {
	d, mock := setupTestRedisDAO()

	ticket := newTestTicket("TKT-1")
	mock.ExpectEvalSha(insertTicketScript.Hash(), insertKeys("TKT-1"), encodeForRedis(t, ticket), "TKT-1").
		SetVal(int64(0))

	_, err := d.Insert(context.Background(), ticket)
	assert.ErrorIs(t, err, ErrDuplicateTicketID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTicketDAO_InsertStoreError(t *testing.T) {
	d, mock := setupTestRedisDAO()

	ticket := newTestTicket("TKT-1")
	mock.ExpectEvalSha(insertTicketScript.Hash(), insertKeys("TKT-1"), encodeForRedis(t, ticket), "TKT-1").
		SetErr(errors.New("connection refused"))

	_, err := d.Insert(context.Background(), ticket)
	assert.EqualError(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTicketDAO_InsertWritesBodyAndOrder(t *testing.T) {
	d, mr, _ := setupMiniredisDAO(t)
	ctx := context.Background()

	first, err := d.Insert(ctx, newTestTicket("TKT-1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.Seq)

	second, err := d.Insert(ctx, newTestTicket("TKT-2"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Seq)

	_, err = d.Insert(ctx, newTestTicket("TKT-1"))
	assert.ErrorIs(t, err, ErrDuplicateTicketID)

	order, err := mr.List("tickets:order")
	require.NoError(t, err)
	assert.Equal(t, []string{"TKT-1", "TKT-2"}, order)

	tickets, err := d.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "TKT-1", tickets[0].TicketID)
	assert.Equal(t, "TKT-2", tickets[1].TicketID)
}

func TestRedisTicketDAO_InsertFailedOrderLeavesNoBody(t *testing.T) {
	d, mr, _ := setupMiniredisDAO(t)
	ctx := context.Background()

	// RPUSH fails with WRONGTYPE against a string key
	require.NoError(t, mr.Set("tickets:order", "not-a-list"))

	_, err := d.Insert(ctx, newTestTicket("TKT-1"))
	require.Error(t, err)
	assert.False(t, mr.Exists("ticket:TKT-1"))

	mr.Del("tickets:order")
	inserted, err := d.Insert(ctx, newTestTicket("TKT-1"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), inserted.Seq)
}

func TestRedisTicketDAO_FindByTicketID(t *testing.T) {
	d, mock := setupTestRedisDAO()

	ticket := newTestTicket("TKT-1")
	mock.ExpectGet("ticket:TKT-1").SetVal(encodeForRedis(t, ticket))

	got, err := d.FindByTicketID(context.Background(), "TKT-1")
	require.NoError(t, err)
	assert.Equal(t, ticket.TicketID, got.TicketID)
	assert.Equal(t, ticket.SecretKey, got.SecretKey)
	assert.True(t, ticket.CreatedAt.Equal(got.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTicketDAO_FindByTicketIDMissing(t *testing.T) {
	d, mock := setupTestRedisDAO()

	mock.ExpectGet("ticket:nope").RedisNil()

	_, err := d.FindByTicketID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestRedisTicketDAO_FindAll(t *testing.T) {
	d, mock := setupTestRedisDAO()

	first, second := newTestTicket("TKT-1"), newTestTicket("TKT-2")
	mock.ExpectLRange("tickets:order", 0, -1).SetVal([]string{"TKT-1", "TKT-2", "TKT-3"})
	mock.ExpectMGet("ticket:TKT-1", "ticket:TKT-2", "ticket:TKT-3").
		SetVal([]interface{}{encodeForRedis(t, first), encodeForRedis(t, second), nil})

	tickets, err := d.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "TKT-1", tickets[0].TicketID)
	assert.Equal(t, "TKT-2", tickets[1].TicketID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTicketDAO_FindAllEmpty(t *testing.T) {
	d, mock := setupTestRedisDAO()

	mock.ExpectLRange("tickets:order", 0, -1).SetVal([]string{})

	tickets, err := d.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisTicketDAO_UpdateByTicketID(t *testing.T) {
	d, _, _ := setupMiniredisDAO(t)
	ctx := context.Background()
	_, err := d.Insert(ctx, newTestTicket("TKT-1"))
	require.NoError(t, err)

	updated, err := d.UpdateByTicketID(ctx, "TKT-1", markScanned)
	require.NoError(t, err)
	assert.True(t, updated.IsScanned)
	assert.Equal(t, "gate-1", updated.ScannedBy)
	require.NotNil(t, updated.ScannedAt)

	got, err := d.FindByTicketID(ctx, "TKT-1")
	require.NoError(t, err)
	assert.True(t, got.IsScanned)
	assert.Equal(t, "gate-1", got.ScannedBy)
	assert.Equal(t, "key-TKT-1", got.SecretKey)
}

func TestRedisTicketDAO_UpdateAbortReturnsCurrent(t *testing.T) {
	d, _, _ := setupMiniredisDAO(t)
	ctx := context.Background()
	_, err := d.Insert(ctx, newTestTicket("TKT-1"))
	require.NoError(t, err)

	_, err = d.UpdateByTicketID(ctx, "TKT-1", markScanned)
	require.NoError(t, err)

	current, err := d.UpdateByTicketID(ctx, "TKT-1", markScanned)
	assert.ErrorIs(t, err, errAlreadyScanned)
	assert.Equal(t, "TKT-1", current.TicketID)
	assert.True(t, current.IsScanned)
	assert.Equal(t, "gate-1", current.ScannedBy)
}

func TestRedisTicketDAO_UpdateMissing(t *testing.T) {
	d, _, _ := setupMiniredisDAO(t)

	current, err := d.UpdateByTicketID(context.Background(), "nope", markScanned)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.Equal(t, Ticket{}, current)
}

func TestRedisTicketDAO_UpdateRetriesAfterConcurrentWrite(t *testing.T) {
	d, _, client := setupMiniredisDAO(t)
	ctx := context.Background()
	_, err := d.Insert(ctx, newTestTicket("TKT-1"))
	require.NoError(t, err)

	raw, err := client.Get(ctx, "ticket:TKT-1").Result()
	require.NoError(t, err)

	calls := 0
	updated, err := d.UpdateByTicketID(ctx, "TKT-1", func(t *Ticket) error {
		calls++
		if calls == 1 {
			// touch the watched key so the first EXEC is discarded
			if err := client.Set(ctx, "ticket:TKT-1", raw, 0).Err(); err != nil {
				return err
			}
		}
		return markScanned(t)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, updated.IsScanned)
}

func TestRedisTicketDAO_UpdateGivesUpAfterRepeatedConflicts(t *testing.T) {
	d, _, client := setupMiniredisDAO(t)
	ctx := context.Background()
	_, err := d.Insert(ctx, newTestTicket("TKT-1"))
	require.NoError(t, err)

	raw, err := client.Get(ctx, "ticket:TKT-1").Result()
	require.NoError(t, err)

	calls := 0
	_, err = d.UpdateByTicketID(ctx, "TKT-1", func(t *Ticket) error {
		calls++
		if err := client.Set(ctx, "ticket:TKT-1", raw, 0).Err(); err != nil {
			return err
		}
		return markScanned(t)
	})
	assert.ErrorIs(t, err, ErrUpdateConflict)
	assert.Equal(t, redisMaxTxRetries, calls)

	got, err := d.FindByTicketID(ctx, "TKT-1")
	require.NoError(t, err)
	assert.False(t, got.IsScanned)
}

func TestRedisTicketDAO_ConcurrentUpdatesHaveOneWinner(t *testing.T) {
	d, _, _ := setupMiniredisDAO(t)
	ctx := context.Background()
	_, err := d.Insert(ctx, newTestTicket("TKT-1"))
	require.NoError(t, err)

	const workers = 40
	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := d.UpdateByTicketID(ctx, "TKT-1", markScanned)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, errAlreadyScanned):
				losses.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(workers-1), losses.Load())
}
