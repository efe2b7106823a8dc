package db

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrClosed = errors.New("db: pool closed")

// OpenFunc establishes a ready-to-use handle (connected and migrated).
type OpenFunc func(ctx context.Context, dsn string) (*gorm.DB, error)

// Pool is the process-wide database handle. It connects on first use; concurrent
// first callers share one connect attempt. A failed attempt is not cached.
type Pool struct {
	dsn  string
	open OpenFunc
	log  *zap.Logger

	group  singleflight.Group
	db     atomic.Pointer[gorm.DB]
	closed atomic.Bool
}

// NewPool returns a pool that connects through lib/pq and migrates models on first use.
func NewPool(dsn string, log *zap.Logger, models ...any) *Pool {
	return NewPoolWithOpener(dsn, Opener(models...), log)
}

func NewPoolWithOpener(dsn string, open OpenFunc, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{dsn: dsn, open: open, log: log}
}

// Get returns the shared handle, connecting if this is the first use.
func (p *Pool) Get(ctx context.Context) (*gorm.DB, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if gdb := p.db.Load(); gdb != nil {
		return gdb.WithContext(ctx), nil
	}

	v, err, _ := p.group.Do("connect", func() (any, error) {
		if gdb := p.db.Load(); gdb != nil {
			return gdb, nil
		}
		// detached: a cancelled caller must not fail the shared attempt
		gdb, err := p.open(context.WithoutCancel(ctx), p.dsn)
		if err != nil {
			p.log.Error("db connect failed", zap.Error(err))
			return nil, err
		}
		p.db.Store(gdb)
		if p.closed.Load() {
			// Close ran mid-connect; whichever side takes the handle closes it
			if p.db.CompareAndSwap(gdb, nil) {
				_ = closeHandle(gdb)
			}
			return nil, ErrClosed
		}
		p.log.Info("db connected")
		return gdb, nil
	})
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return v.(*gorm.DB).WithContext(ctx), nil
}

func (p *Pool) Close() error {
	p.closed.Store(true)
	gdb := p.db.Swap(nil)
	if gdb == nil {
		return nil
	}
	return closeHandle(gdb)
}

func closeHandle(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func Opener(models ...any) OpenFunc {
	return func(ctx context.Context, dsn string) (*gorm.DB, error) {
		gdb, err := gorm.Open(postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        dsn,
		}), &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, err
		}
		if len(models) > 0 {
			if err := gdb.WithContext(ctx).AutoMigrate(models...); err != nil {
				return nil, fmt.Errorf("automigrate: %w", err)
			}
		}
		return gdb, nil
	}
}
