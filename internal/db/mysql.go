package db

import (
	"fmt"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yizeng/gab/gin/gorm/ticket-gate/internal/config"
)

// MySQLDSN builds the driver DSN. ParseTime is required so DATETIME columns
// scan into time.Time.
func MySQLDSN(conf *config.MySQLConfig) string {
	c := mysqldriver.NewConfig()
	c.User = conf.User
	c.Passwd = conf.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(conf.Host, conf.Port)
	c.DBName = conf.DB
	c.ParseTime = true
	c.Loc = time.UTC

	return c.FormatDSN()
}

func OpenMySQL(conf *config.MySQLConfig) (*gorm.DB, error) {
	return OpenMySQLWithDSN(MySQLDSN(conf))
}

func OpenMySQLWithDSN(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return db, nil
}
