package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
)

const (
	envPrefix = "TICKETGATE"

	StoreDriverPostgres = "postgres"
	StoreDriverMySQL    = "mysql"
	StoreDriverRedis    = "redis"
	StoreDriverMemory   = "memory"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Store    *StoreConfig    `mapstructure:"store"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	MySQL    *MySQLConfig    `mapstructure:"mysql"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Ticket   *TicketConfig   `mapstructure:"ticket"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TicketConfig controls how credentials are minted and rendered.
type TicketConfig struct {
	IDPrefix      string `mapstructure:"id_prefix"`
	KeyBytes      int    `mapstructure:"key_bytes"`
	MaxIDAttempts int    `mapstructure:"max_id_attempts"`
	QRSize        int    `mapstructure:"qr_size"`
	DefaultAgent  string `mapstructure:"default_agent"`
	// SealingKey is a base64 encoded 32 byte key. Empty stores keys unsealed.
	SealingKey string `mapstructure:"sealing_key"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "5000")
	v.SetDefault("api.base_url", "localhost:5000")
	v.SetDefault("api.allowed_cors_domains", []string{"*"})

	v.SetDefault("gin.mode", "debug")

	v.SetDefault("store.driver", StoreDriverPostgres)
	v.SetDefault("store.auto_migrate", true)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "tickets")
	v.SetDefault("postgres.ssl_mode", "disable")

	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mysql.user", "root")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.db", "tickets")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ticket.id_prefix", "TKT")
	v.SetDefault("ticket.key_bytes", 32)
	v.SetDefault("ticket.max_id_attempts", 5)
	v.SetDefault("ticket.qr_size", 256)
	v.SetDefault("ticket.default_agent", "Agent")
	v.SetDefault("ticket.sealing_key", "")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

// Load reads the YAML file at path. Every key can be overridden by an
// environment variable such as TICKETGATE_STORE_DRIVER.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("conf.Validate -> %w", err)
	}

	return conf, nil
}

// Watch calls onChange whenever the file at path is rewritten. Settings are
// only read at startup, so callers typically just log the event.
func Watch(path string, onChange func(e fsnotify.Event)) {
	v := newViper(path)
	v.OnConfigChange(onChange)
	v.WatchConfig()
}

func (c *AppConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.API, validation.Required),
		validation.Field(&c.Gin, validation.Required),
		validation.Field(&c.Store, validation.Required),
		validation.Field(&c.Ticket, validation.Required),
	)
}

func (c *APIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
	)
}

func (c *GinConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.In("debug", "release", "test")),
	)
}

func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(StoreDriverPostgres, StoreDriverMySQL, StoreDriverRedis, StoreDriverMemory)),
	)
}

func (c *TicketConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IDPrefix, validation.Required, validation.Length(1, 16)),
		// 16 bytes is the 128 bit floor for the secret key
		validation.Field(&c.KeyBytes, validation.Required, validation.Min(16), validation.Max(64)),
		validation.Field(&c.MaxIDAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.QRSize, validation.Required, validation.Min(64)),
		validation.Field(&c.DefaultAgent, validation.Required),
	)
}
