package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"campus-events/internal/config"
	"campus-events/internal/database"
	"campus-events/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/uptrace/bun"
)

// Env carries configuration and connections shared by every command.
// Connections open on first use so `campusctl --help` works without a database.
type Env struct {
	Config *config.Config
	Logger *logger.Logger
	Out    io.Writer

	db  *bun.DB
	rdb *redis.Client
}

func NewEnv() *Env {
	cfg := config.Load()
	return &Env{
		Config: cfg,
		Logger: logger.New(logger.Options{
			Service:  "campusctl",
			MinLevel: logger.ParseLevel(cfg.Logging.Level),
			Terminal: os.Stderr,
		}),
		Out: os.Stdout,
	}
}

func (e *Env) DB(ctx context.Context) (*bun.DB, error) {
	if e.db == nil {
		db, err := database.Connect(ctx, e.Config.Database, e.Logger)
		if err != nil {
			return nil, err
		}
		e.db = db
	}
	return e.db, nil
}

func (e *Env) Redis(ctx context.Context) (*redis.Client, error) {
	if e.rdb == nil {
		rdb, err := database.ConnectRedis(ctx, e.Config.Redis, e.Logger)
		if err != nil {
			return nil, err
		}
		e.rdb = rdb
	}
	return e.rdb, nil
}

func (e *Env) Close() {
	if e.rdb != nil {
		_ = e.rdb.Close()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
	e.Logger.Close()
}

func (e *Env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.Out, format, args...)
}
