package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/api"
	"github.com/sitecms/sitecms/internal/app"
	"github.com/sitecms/sitecms/internal/app/maintenance"
	iauth "github.com/sitecms/sitecms/internal/auth"
	"github.com/sitecms/sitecms/internal/cache"
	"github.com/sitecms/sitecms/internal/database"
	"github.com/sitecms/sitecms/internal/middleware"
	"github.com/sitecms/sitecms/internal/monitoring"
	"github.com/sitecms/sitecms/internal/services"
	"github.com/sitecms/sitecms/pkg/logger"
	"github.com/sitecms/sitecms/pkg/mail"
	"github.com/sitecms/sitecms/pkg/storage"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Redis     *cache.RedisStore
	Storage   storage.Storage
	Services  *services.Registry
	Cleaner   *maintenance.Cleaner
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises databases, caches, services, and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore, err := cache.NewDatabaseStore(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise database cache: %w", err)
	}

	var sharedStore cache.Store = dbStore
	stack.RateStore = middleware.NewSharedRateStore(dbStore)
	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to database-backed operations", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.RedisTarget()))
			sharedStore = stack.Redis
			stack.RateStore = middleware.NewSharedRateStore(stack.Redis)
		}
	}

	production := cfg.Server.IsProduction()
	userRealm, err := iauth.NewRealm(cfg.Auth.UserRealmConfig(production))
	if err != nil {
		return nil, fmt.Errorf("initialise user realm: %w", err)
	}
	adminRealm, err := iauth.NewRealm(cfg.Auth.AdminRealmConfig(production))
	if err != nil {
		return nil, fmt.Errorf("initialise admin realm: %w", err)
	}

	mailer, err := mail.New(cfg.Email.MailSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	stack.Storage, err = storage.New(ctx, cfg.Storage.StorageSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise storage: %w", err)
	}

	stack.Services, err = services.NewRegistry(stack.DB, mailer, stack.Storage, services.RegistryConfig{
		OTPTTL:         cfg.Auth.OTPTTL(),
		StorageTimeout: cfg.Storage.OperationTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("initialise services: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(stack.DB, stack.Services.OTP,
		maintenance.WithOTPSchedule(cfg.Maintenance.OTPCleanup),
		maintenance.WithCacheSchedule(cfg.Maintenance.CacheCleanup),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:          stack.DB,
		Config:      cfg,
		Services:    stack.Services,
		UserRealm:   userRealm,
		AdminRealm:  adminRealm,
		Revocations: iauth.NewRevocations(sharedStore),
		RateStore:   stack.RateStore,
		Storage:     stack.Storage,
		Health:      healthChecks(cfg, stack),
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// healthChecks registers probes for the dependencies the stack actually uses.
func healthChecks(cfg *app.Config, stack *runtimeStack) *monitoring.Health {
	health := monitoring.NewHealth(cfg.Monitoring.Health.Timeout).
		Live(monitoring.Database(stack.DB)).
		Ready(monitoring.Database(stack.DB))
	if stack.Redis != nil {
		health.Ready(monitoring.Cache(stack.Redis))
	}
	if local, ok := stack.Storage.(*storage.LocalStorage); ok {
		health.Ready(monitoring.Directory("storage", local.Root()))
	}
	return health
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
		if _, err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	admin := cfg.Auth.BootstrapAdmin
	if err := database.AutoMigrateAndSeed(db, database.BootstrapAdmin{
		Name:     admin.Name,
		Email:    admin.Email,
		Password: admin.Password,
	}); err != nil {
		closeDatabase(db, logger.WithModule("database"))
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),

		MaxOpenConns:    cfg.Database.Pool.MaxOpen,
		MaxIdleConns:    cfg.Database.Pool.MaxIdle,
		ConnMaxLifetime: cfg.Database.Pool.MaxLifetime,
		SlowQuery:       cfg.Database.SlowQueryThreshold,
	}

	var auth app.DBAuthConfig
	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
		return dbCfg
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		auth = cfg.Database.Postgres
	case "mysql":
		auth = cfg.Database.MySQL
	default:
		// Leave driver as-is to surface unsupported driver error during open.
		return dbCfg
	}

	dbCfg.Host = strings.TrimSpace(auth.Host)
	dbCfg.Port = auth.Port
	dbCfg.Name = strings.TrimSpace(auth.Database)
	dbCfg.User = strings.TrimSpace(auth.Username)
	dbCfg.Password = auth.Password
	dbCfg.Options = parseOptions(auth.Options)
	return dbCfg
}

// parseOptions turns "sslmode=disable&TimeZone=UTC" (or space separated pairs) into a map.
func parseOptions(raw string) map[string]string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '&' || r == ' ' || r == ';'
	})
	if len(fields) == 0 {
		return nil
	}
	options := make(map[string]string, len(fields))
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		options[key] = strings.TrimSpace(value)
	}
	return options
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
