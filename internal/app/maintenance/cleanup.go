package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/cache"
	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/logger"
)

const (
	defaultOTPSpec   = "@every 15m"
	defaultCacheSpec = "@hourly"
)

// Cleaner coordinates background maintenance: purging expired verification
// codes and expired rows of the database-backed cache.
type Cleaner struct {
	db   *gorm.DB
	otp  *services.OTPService
	cron *cron.Cron
	now  func() time.Time
	log  *zap.Logger

	otpSchedule   string
	cacheSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithOTPSchedule overrides the cron specification for verification code cleanup.
func WithOTPSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.otpSchedule = spec
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache cleanup.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner. A nil otp skips code cleanup and a nil db
// skips cache cleanup.
func NewCleaner(db *gorm.DB, otp *services.OTPService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:            db,
		otp:           otp,
		now:           time.Now,
		otpSchedule:   defaultOTPSpec,
		cacheSchedule: defaultCacheSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return cleaner
}

// Start registers the cleanup jobs and launches the scheduler.
func (c *Cleaner) Start() error {
	if c.otp == nil && c.db == nil {
		return nil
	}

	if c.otp != nil {
		if _, err := c.cron.AddFunc(c.otpSchedule, func() {
			if _, err := c.purgeCodes(context.Background()); err != nil {
				c.log.Warn("otp cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
			if _, err := c.purgeCache(context.Background()); err != nil {
				c.log.Warn("cache cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler. The returned context is done once running jobs finish.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// Stats reports how many rows a cleanup pass removed.
type Stats struct {
	Codes        int64
	CacheEntries int64
}

// RunOnce executes every configured cleanup routine sequentially.
func (c *Cleaner) RunOnce(ctx context.Context) (Stats, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		stats Stats
		errs  error
	)

	if c.otp != nil {
		n, err := c.purgeCodes(ctx)
		stats.Codes = n
		errs = multierr.Append(errs, err)
	}

	if c.db != nil {
		n, err := c.purgeCache(ctx)
		stats.CacheEntries = n
		errs = multierr.Append(errs, err)
	}

	return stats, errs
}

func (c *Cleaner) purgeCodes(ctx context.Context) (int64, error) {
	n, err := c.otp.PurgeExpired(ctx, c.now())
	if err == nil && n > 0 {
		c.log.Debug("purged expired verification codes", zap.Int64("count", n))
	}
	return n, err
}

func (c *Cleaner) purgeCache(ctx context.Context) (int64, error) {
	n, err := cache.PurgeExpired(ctx, c.db, c.now())
	if err == nil && n > 0 {
		c.log.Debug("purged expired cache entries", zap.Int64("count", n))
	}
	return n, err
}
