package app

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/api"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/config"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/db"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/logger"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/repository"
	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/repository/dao"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	config.Watch(configPath, func(e fsnotify.Event) {
		zap.L().Warn("config file changed, restart to apply", zap.String("file", e.Name))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticketDAO, err := openTicketDAO(ctx, conf)
	if err != nil {
		return fmt.Errorf("failed to initialize ticket store -> %w", err)
	}

	s, err := api.NewServer(conf, ticketDAO)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}
	go s.Feed.Run(ctx)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr), zap.String("store", conf.Store.Driver))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func openTicketDAO(ctx context.Context, conf *config.AppConfig) (repository.TicketDAO, error) {
	switch conf.Store.Driver {
	case config.StoreDriverMemory:
		zap.L().Warn("using the in-memory ticket store, tickets are lost on restart")
		return dao.NewMemoryTicketDAO(), nil

	case config.StoreDriverRedis:
		var (
			client *redis.Client
			err    error
		)
		if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
			client, err = db.OpenRedisWithURL(ctx, redisURL)
		} else {
			client, err = db.OpenRedis(ctx, conf.Redis)
		}
		if err != nil {
			return nil, err
		}
		return dao.NewRedisTicketDAO(client), nil
	}

	gormDB, err := openSQL(conf)
	if err != nil {
		return nil, err
	}

	if conf.Store.AutoMigrate {
		if err = dao.InitTables(gormDB); err != nil {
			return nil, fmt.Errorf("dao.InitTables -> %w", err)
		}
	}

	return dao.NewTicketDAO(gormDB), nil
}

func openSQL(conf *config.AppConfig) (*gorm.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")

	switch conf.Store.Driver {
	case config.StoreDriverMySQL:
		if dbURL != "" {
			return db.OpenMySQLWithDSN(dbURL)
		}
		return db.OpenMySQL(conf.MySQL)
	default:
		if dbURL != "" {
			return db.OpenPostgresWithURL(dbURL)
		}
		return db.OpenPostgres(conf.Postgres)
	}
}
