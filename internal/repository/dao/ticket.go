package dao

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const mysqlDuplicateEntry = 1062

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrDuplicateTicketID = errors.New("ticket id already exists")
)

type Ticket struct {
	Seq uint64 `gorm:"primaryKey;autoIncrement" json:"-"`

	TicketID  string `gorm:"size:64;uniqueIndex;not null" json:"ticket_id"`
	SecretKey string `gorm:"size:255;not null" json:"secret_key"`

	Name     string `gorm:"size:255;not null" json:"name"`
	Category string `gorm:"size:16;index;not null" json:"category"` // "VIP", "Gold" or "Standard"
	Seat     string `gorm:"size:64;not null" json:"seat"`

	IsScanned bool       `gorm:"not null" json:"is_scanned"`
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
	ScannedBy string     `gorm:"size:128" json:"scanned_by,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// applyScan copies the scan fields of next onto t. Nothing else on a stored
// ticket may change after insert.
func (t *Ticket) applyScan(next Ticket) {
	t.IsScanned = next.IsScanned
	t.ScannedBy = next.ScannedBy
	t.ScannedAt = nil
	if next.ScannedAt != nil {
		at := *next.ScannedAt
		t.ScannedAt = &at
	}
}

func (t Ticket) clone() Ticket {
	t.applyScan(t)
	return t
}

// TicketDAO stores tickets in a SQL database through gorm. Both the postgres
// and mysql dialects are supported.
type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

func (d *TicketDAO) Insert(ctx context.Context, ticket Ticket) (Ticket, error) {
	ticket.Seq = 0
	result := d.db.WithContext(ctx).Create(&ticket)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return Ticket{}, ErrDuplicateTicketID
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByTicketID(ctx context.Context, ticketID string) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&ticket)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindAll(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).Order("seq ASC").Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

// UpdateByTicketID locks the ticket row, hands a copy to fn and writes back
// the scan fields when fn succeeds. When fn fails nothing is written and the
// stored ticket is returned along with fn's error.
func (d *TicketDAO) UpdateByTicketID(ctx context.Context, ticketID string, fn func(*Ticket) error) (Ticket, error) {
	var current Ticket

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("ticket_id = ?", ticketID).
			First(&current)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return result.Error
		}

		next := current
		if err := fn(&next); err != nil {
			return err
		}

		updated := current
		updated.applyScan(next)
		result = tx.Model(&Ticket{}).
			Where("seq = ?", current.Seq).
			Updates(map[string]interface{}{
				"is_scanned": updated.IsScanned,
				"scanned_at": updated.ScannedAt,
				"scanned_by": updated.ScannedBy,
			})
		if result.Error != nil {
			return result.Error
		}

		current = updated
		return nil
	})
	if errors.Is(err, ErrTicketNotFound) {
		return Ticket{}, err
	}

	return current, err
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return true
	}

	return errors.Is(err, gorm.ErrDuplicatedKey)
}
