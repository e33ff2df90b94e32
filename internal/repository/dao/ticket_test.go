package dao

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/db"
)

type TicketDAOTestSuite struct {
	suite.Suite

	pool     *dockertest.Pool
	resource *dockertest.Resource
	db       *gorm.DB
	dao      *TicketDAO
}

func TestTicketDAO(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	suite.Run(t, new(TicketDAOTestSuite))
}

func (s *TicketDAOTestSuite) SetupSuite() {
	pool, err := dockertest.NewPool("")
	s.Require().NoError(err)
	if err = pool.Client.Ping(); err != nil {
		s.T().Skipf("docker is not available -> %v", err)
	}
	s.pool = pool

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=tickets",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=tickets",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	s.Require().NoError(err)
	s.resource = resource
	s.Require().NoError(resource.Expire(180))

	dsn := fmt.Sprintf("postgres://tickets:secret@%s/tickets?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = 2 * time.Minute
	err = pool.Retry(func() error {
		gdb, err := db.OpenPostgresWithURL(dsn)
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		if err = sqlDB.Ping(); err != nil {
			return err
		}
		s.db = gdb
		return nil
	})
	s.Require().NoError(err)

	s.dao = NewTicketDAO(s.db)
}

func (s *TicketDAOTestSuite) TearDownSuite() {
	if s.pool != nil && s.resource != nil {
		s.NoError(s.pool.Purge(s.resource))
	}
}

func (s *TicketDAOTestSuite) SetupTest() {
	s.Require().NoError(s.db.Migrator().DropTable(&Ticket{}))
	s.Require().NoError(InitTables(s.db))
}

func (s *TicketDAOTestSuite) TestInsertAndFind() {
	ctx := context.Background()

	inserted, err := s.dao.Insert(ctx, newTestTicket("TKT-1"))
	s.Require().NoError(err)
	s.NotZero(inserted.Seq)

	got, err := s.dao.FindByTicketID(ctx, "TKT-1")
	s.Require().NoError(err)
	s.Equal("key-TKT-1", got.SecretKey)
	s.Equal("VIP", got.Category)
	s.False(got.IsScanned)
	s.Nil(got.ScannedAt)
}

func (s *TicketDAOTestSuite) TestInsertDuplicate() {
	ctx := context.Background()

	_, err := s.dao.Insert(ctx, newTestTicket("TKT-1"))
	s.Require().NoError(err)

	_, err = s.dao.Insert(ctx, newTestTicket("TKT-1"))
	s.ErrorIs(err, ErrDuplicateTicketID)
}

func (s *TicketDAOTestSuite) TestFindMissing() {
	_, err := s.dao.FindByTicketID(context.Background(), "nope")
	s.ErrorIs(err, ErrTicketNotFound)

	_, err = s.dao.UpdateByTicketID(context.Background(), "nope", markScanned)
	s.ErrorIs(err, ErrTicketNotFound)
}

func (s *TicketDAOTestSuite) TestFindAllKeepsInsertOrder() {
	ctx := context.Background()
	ids := []string{"TKT-C", "TKT-A", "TKT-B"}
	for _, id := range ids {
		_, err := s.dao.Insert(ctx, newTestTicket(id))
		s.Require().NoError(err)
	}

	tickets, err := s.dao.FindAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(tickets, len(ids))
	for i, ticket := range tickets {
		s.Equal(ids[i], ticket.TicketID)
	}
}

func (s *TicketDAOTestSuite) TestUpdate() {
	ctx := context.Background()
	_, err := s.dao.Insert(ctx, newTestTicket("TKT-1"))
	s.Require().NoError(err)

	updated, err := s.dao.UpdateByTicketID(ctx, "TKT-1", func(t *Ticket) error {
		t.Seat = "Z99"
		return markScanned(t)
	})
	s.Require().NoError(err)
	s.True(updated.IsScanned)
	s.Equal("A1", updated.Seat)

	stored, err := s.dao.FindByTicketID(ctx, "TKT-1")
	s.Require().NoError(err)
	s.True(stored.IsScanned)
	s.Equal("gate-1", stored.ScannedBy)
	s.Require().NotNil(stored.ScannedAt)
	s.Equal("A1", stored.Seat)

	again, err := s.dao.UpdateByTicketID(ctx, "TKT-1", markScanned)
	s.ErrorIs(err, errAlreadyScanned)
	s.True(again.IsScanned)
	s.WithinDuration(*stored.ScannedAt, *again.ScannedAt, time.Microsecond)
}

func (s *TicketDAOTestSuite) TestConcurrentUpdatesHaveOneWinner() {
	ctx := context.Background()
	_, err := s.dao.Insert(ctx, newTestTicket("TKT-1"))
	s.Require().NoError(err)

	const workers = 16
	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.dao.UpdateByTicketID(ctx, "TKT-1", markScanned)
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

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(workers-1), losses.Load())
}
