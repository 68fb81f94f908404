package api

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/YouWantToPinch/pocketwise-api/internal/auth"
	"github.com/YouWantToPinch/pocketwise-api/internal/config"
	"github.com/YouWantToPinch/pocketwise-api/internal/database"
	"github.com/YouWantToPinch/pocketwise-api/internal/events"
)

type APIConfig struct {
	db          database.Store
	sqlDB       *sql.DB
	dbURL       string
	dbDriver    string
	dbMaxConns  int
	platform    string
	port        string
	secret      string
	tokenTTL    time.Duration
	corsOrigins []string
	hashParams  *argon2id.Params
	amqpURL     string
	exchange    string
	events      events.Publisher
	logger      *slog.Logger
}

// Init loads configuration from envPath, the optional CONFIG_FILE and the
// environment. A non-empty altDBUrl replaces the configured database URL.
func (cfg *APIConfig) Init(envPath string, altDBUrl string) error {
	conf, err := config.Load(envPath)
	if err != nil {
		return err
	}

	cfg.platform = conf.Platform
	cfg.port = conf.Port
	cfg.secret = conf.Secret
	cfg.tokenTTL = conf.TokenTTL
	cfg.corsOrigins = conf.CORSOrigins()
	cfg.dbDriver = conf.DB.Driver
	cfg.dbMaxConns = conf.DB.MaxConns
	cfg.amqpURL = conf.AMQP.URL
	cfg.exchange = conf.AMQP.Exchange
	cfg.hashParams = auth.DefaultParams
	cfg.events = events.Nop{}

	if len(altDBUrl) != 0 {
		cfg.dbURL = altDBUrl
	} else {
		cfg.dbURL = conf.DB.ConnectionString()
	}

	switch conf.LogLevel {
	case "DEBUG":
		cfg.NewLogger(slog.LevelDebug)
	case "WARN":
		cfg.NewLogger(slog.LevelWarn)
	case "ERROR":
		cfg.NewLogger(slog.LevelError)
	default:
		cfg.NewLogger(slog.LevelInfo)
	}
	return nil
}

func (cfg *APIConfig) NewLogger(level slog.Level) {
	cfg.logger = slog.New(slog.NewJSONHandler(os.Stdout,
		&slog.HandlerOptions{Level: level}))
	slog.SetDefault(cfg.logger)
}

// ConnectToDB opens the connection pool and applies the migrations in fsys.
func (cfg *APIConfig) ConnectToDB(ctx context.Context, fsys fs.FS) error {
	db, err := database.Open(ctx, cfg.dbDriver, cfg.dbURL, database.PoolOptions{
		MaxOpenConns:    cfg.dbMaxConns,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return err
	}
	if err := database.Migrate(ctx, db, fsys); err != nil {
		_ = db.Close()
		return err
	}
	cfg.sqlDB = db
	cfg.db = database.NewStore(db)
	slog.Info("connected to database", slog.String("driver", cfg.dbDriver), slog.Int("max_conns", cfg.dbMaxConns))
	return nil
}

// ConnectEvents dials the broker when one is configured. Without AMQP_URL
// events are dropped.
func (cfg *APIConfig) ConnectEvents() error {
	if cfg.amqpURL == "" {
		cfg.events = events.Nop{}
		slog.Info("no AMQP_URL set; budget alerts will not be published")
		return nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.amqpURL, cfg.exchange)
	if err != nil {
		return fmt.Errorf("connect event publisher: %w", err)
	}
	cfg.events = publisher
	slog.Info("publishing events", slog.String("exchange", cfg.exchange))
	return nil
}

func (cfg *APIConfig) Addr() string {
	return ":" + cfg.port
}

// Close releases the event publisher and the connection pool.
func (cfg *APIConfig) Close() error {
	var firstErr error
	if cfg.events != nil {
		if err := cfg.events.Close(); err != nil {
			firstErr = err
		}
	}
	if cfg.sqlDB != nil {
		if err := cfg.sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
