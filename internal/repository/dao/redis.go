package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisTicketKeyPrefix = "ticket:"
	redisOrderKey        = "tickets:order"
	redisMaxTxRetries    = 16
)

var ErrUpdateConflict = errors.New("ticket update kept conflicting")

// insertTicketScript appends the id to the order list before writing the
// body, so a failed RPUSH leaves nothing behind. Returns 0 when the id is
// taken, otherwise the new length of the order list.
var insertTicketScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
local n = redis.call('RPUSH', KEYS[2], ARGV[2])
redis.call('SET', KEYS[1], ARGV[1])
return n
`)

// RedisTicketDAO stores each ticket as a JSON string under ticket:<id> and
// keeps creation order in the tickets:order list. Inserts write both keys in
// one script. Updates are optimistic WATCH/MULTI transactions on the single
// ticket key.
type RedisTicketDAO struct {
	client *redis.Client
}

func NewRedisTicketDAO(client *redis.Client) *RedisTicketDAO {
	return &RedisTicketDAO{
		client: client,
	}
}

func redisTicketKey(ticketID string) string {
	return redisTicketKeyPrefix + ticketID
}

func (d *RedisTicketDAO) Insert(ctx context.Context, ticket Ticket) (Ticket, error) {
	payload, err := json.Marshal(ticket)
	if err != nil {
		return Ticket{}, fmt.Errorf("json.Marshal -> %w", err)
	}

	keys := []string{redisTicketKey(ticket.TicketID), redisOrderKey}
	n, err := insertTicketScript.Run(ctx, d.client, keys, string(payload), ticket.TicketID).Int64()
	if err != nil {
		return Ticket{}, err
	}
	if n == 0 {
		return Ticket{}, ErrDuplicateTicketID
	}
	ticket.Seq = uint64(n)

	return ticket, nil
}

func (d *RedisTicketDAO) FindByTicketID(ctx context.Context, ticketID string) (Ticket, error) {
	raw, err := d.client.Get(ctx, redisTicketKey(ticketID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Ticket{}, ErrTicketNotFound
		}
		return Ticket{}, err
	}

	return decodeRedisTicket(raw)
}

func (d *RedisTicketDAO) FindAll(ctx context.Context) ([]Ticket, error) {
	ids, err := d.client.LRange(ctx, redisOrderKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Ticket{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisTicketKey(id)
	}

	values, err := d.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	tickets := make([]Ticket, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// order entry whose ticket body is gone
			continue
		}
		ticket, err := decodeRedisTicket(raw)
		if err != nil {
			return nil, err
		}
		ticket.Seq = uint64(i + 1)
		tickets = append(tickets, ticket)
	}

	return tickets, nil
}

func (d *RedisTicketDAO) UpdateByTicketID(ctx context.Context, ticketID string, fn func(*Ticket) error) (Ticket, error) {
	key := redisTicketKey(ticketID)

	for attempt := 0; attempt < redisMaxTxRetries; attempt++ {
		var current, updated Ticket

		err := d.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return ErrTicketNotFound
				}
				return err
			}

			current, err = decodeRedisTicket(raw)
			if err != nil {
				return err
			}

			next := current.clone()
			if err := fn(&next); err != nil {
				return err
			}

			updated = current.clone()
			updated.applyScan(next)
			payload, err := json.Marshal(updated)
			if err != nil {
				return fmt.Errorf("json.Marshal -> %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, string(payload), 0)
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return updated, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, ErrTicketNotFound):
			return Ticket{}, err
		default:
			return current, err
		}
	}

	return Ticket{}, ErrUpdateConflict
}

func decodeRedisTicket(raw string) (Ticket, error) {
	var ticket Ticket
	if err := json.Unmarshal([]byte(raw), &ticket); err != nil {
		return Ticket{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}
	return ticket, nil
}
