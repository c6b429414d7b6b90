// Package app wires configuration, storage and services into the two HTTP engines.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialdesk/internal/core/auth"
	"socialdesk/internal/core/cache"
	"socialdesk/internal/core/config"
	"socialdesk/internal/core/database"
	"socialdesk/internal/event"
	"socialdesk/internal/repo"
	"socialdesk/internal/service"
	"socialdesk/internal/transport/http/handler"
	"socialdesk/internal/transport/http/router"
	"socialdesk/pkg/utils"
)

type App struct {
	Cfg   *config.Config
	Log   *zap.Logger
	DB    *gorm.DB
	Cache *cache.Cache
	JWT   *auth.JWTer

	Friends  *service.FriendService
	Notify   *service.NotificationEmitter
	Stats    *service.StatsService
	Tickets  *service.TicketService
	Admins   *service.AdminService
	registry *router.Registry
}

// Open connects the database (and Redis when enabled) described by cfg.
func Open(cfg *config.Config, l *zap.Logger) (*gorm.DB, *cache.Cache, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	if !cfg.Redis.Enable {
		return db, nil, nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		// 缓存可选：连不上只告警，读路径会直接回源
		l.Warn("redis unreachable, statistics served from the database", zap.Error(err))
	} else {
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}
	return db, c, nil
}

// New builds the services and subscribes the event handlers. c may be nil.
func New(cfg *config.Config, db *gorm.DB, c *cache.Cache, l *zap.Logger) (*App, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required")
	}
	a := &App{
		Cfg:   cfg,
		Log:   l,
		DB:    db,
		Cache: c,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
	}

	hasher := utils.BcryptHasher{}
	identity := repo.NewIdentityDirectory(db, hasher)
	bus := event.NewBus(l.Named("bus"))

	a.Notify = service.NewNotificationEmitter(db, l)
	a.Notify.Register(bus)
	a.Stats = service.NewStatsService(db, c, service.StatsOptions{
		Mode:      cfg.Stats.Mode,
		Driver:    cfg.DB.Driver,
		Isolation: cfg.Stats.Isolation,
		CacheKey:  cfg.Stats.CacheKey,
		CacheTTL:  time.Duration(cfg.Stats.CacheTTLSec) * time.Second,
	}, l)
	a.Stats.Register(bus)
	a.Friends = service.NewFriendService(db, identity, bus, l)
	a.Tickets = service.NewTicketService(db, identity, bus, a.Stats, l)

	admins, err := service.NewAdminService(db, hasher, identity, l)
	if err != nil {
		return nil, err
	}
	a.Admins = admins

	a.registry = &router.Registry{}
	a.registry.Register(
		handler.NewAdminHandler(a.Admins, a.JWT, l),
		handler.NewFriendHandler(a.Friends, l),
		handler.NewNotificationHandler(a.Notify, l),
		handler.NewTicketHandler(a.Tickets, l),
		handler.NewStatsHandler(a.Stats, l),
	)
	return a, nil
}

// Bootstrap seeds the configured admins and, if asked to, recomputes statistics.
func (a *App) Bootstrap(ctx context.Context) error {
	n, err := a.Admins.Bootstrap(ctx, a.Cfg.Admins)
	if err != nil {
		return fmt.Errorf("bootstrap admins: %w", err)
	}
	a.Log.Info("admin bootstrap done", zap.Int("created", n), zap.Int("configured", len(a.Cfg.Admins)))

	if a.Cfg.Stats.RefreshOnRun {
		snap, err := a.Stats.Recompute(ctx)
		if err != nil {
			return err
		}
		a.Log.Info("statistics refreshed",
			zap.Int64("users", snap.TotalUsers), zap.Int64("tickets", snap.TotalTickets))
	}
	return nil
}

func (a *App) deps() router.Deps {
	health := map[string]router.HealthCheck{
		"db": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.Cache != nil {
		health["redis"] = a.Cache.Ping
	}
	return router.Deps{Log: a.Log, Limits: a.Cfg.Limits, Registry: a.registry, Health: health}
}

func (a *App) APIEngine() *gin.Engine   { return router.NewAPIEngine(a.deps(), a.JWT) }
func (a *App) AdminEngine() *gin.Engine { return router.NewAdminEngine(a.deps(), a.JWT) }

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("redis close", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
