package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"socialdesk/internal/core/cache"
	"socialdesk/internal/core/database"
	"socialdesk/internal/core/metrics"
	"socialdesk/internal/domain"
	"socialdesk/internal/event"
	"socialdesk/internal/repo"
)

const (
	StatsModeCached = "cached"
	StatsModeLive   = "live"
)

type StatsOptions struct {
	Mode      string // cached | live
	Driver    string
	Isolation string // see database.ResolveIsolation
	CacheKey  string
	CacheTTL  time.Duration
}

// StatsService aggregates the four system counters. In cached mode the snapshot
// lives in a single-row table refreshed by ticket events, with Redis in front.
type StatsService struct {
	db    *gorm.DB
	cache *cache.Cache
	opt   StatsOptions
	log   *zap.Logger
}

func NewStatsService(db *gorm.DB, c *cache.Cache, opt StatsOptions, l *zap.Logger) *StatsService {
	if opt.Mode != StatsModeLive {
		opt.Mode = StatsModeCached
	}
	opt.Isolation = database.ResolveIsolation(opt.Driver, opt.Isolation)
	if opt.CacheKey == "" {
		opt.CacheKey = "stats:snapshot"
	}
	if opt.CacheTTL <= 0 {
		opt.CacheTTL = 30 * time.Second
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &StatsService{db: db, cache: c, opt: opt, log: l.Named("stats")}
}

func (s *StatsService) Register(b *event.Bus) {
	b.Subscribe(domain.TicketCreated{}, s.onTicketChanged)
	b.Subscribe(domain.TicketUpdated{}, s.onTicketChanged)
}

// onTicketChanged refreshes the persisted snapshot inside the ticket's transaction.
func (s *StatsService) onTicketChanged(ctx context.Context, tx *gorm.DB, ev domain.Event) error {
	if s.opt.Mode == StatsModeLive {
		return nil
	}
	// 行锁让并发的工单事务依次统计，后提交者能看到前者的行
	if _, err := repo.NewStatsRepo(tx).RefreshLocked(ctx); err != nil {
		return fmt.Errorf("refresh statistics: %w", err)
	}
	metrics.StatsRefresh.WithLabelValues(ev.EventName()).Inc()
	return nil
}

// GetStatistics returns the current snapshot.
func (s *StatsService) GetStatistics(ctx context.Context) (*domain.StatisticsSnapshot, error) {
	if s.opt.Mode == StatsModeLive {
		snap, err := s.compute(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("compute statistics: %w", err)
		}
		return &snap, nil
	}
	snap, err := cache.GetOrLoadJSON(s.cache, ctx, s.opt.CacheKey, s.opt.CacheTTL, s.loadPersisted)
	if err != nil {
		return nil, fmt.Errorf("load statistics: %w", err)
	}
	return snap, nil
}

// Recompute rebuilds the persisted snapshot now and drops the cached copy.
func (s *StatsService) Recompute(ctx context.Context) (*domain.StatisticsSnapshot, error) {
	snap, err := s.compute(ctx, s.opt.Mode == StatsModeCached)
	if err != nil {
		return nil, fmt.Errorf("recompute statistics: %w", err)
	}
	metrics.StatsRefresh.WithLabelValues("manual").Inc()
	s.Invalidate(ctx)
	return &snap, nil
}

// Invalidate drops the cached snapshot. Cache failures only cost freshness
// until the TTL runs out, so they are logged and swallowed.
func (s *StatsService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, s.opt.CacheKey); err != nil {
		s.log.Warn("statistics cache invalidate failed", zap.Error(err))
	}
}

func (s *StatsService) loadPersisted(ctx context.Context) (*domain.StatisticsSnapshot, error) {
	snap, err := repo.NewStatsRepo(s.db).Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		return snap, nil
	}
	fresh, err := s.compute(ctx, true)
	if err != nil {
		return nil, err
	}
	metrics.StatsRefresh.WithLabelValues("cold_start").Inc()
	return &fresh, nil
}

// compute counts inside one transaction so every counter sees the same instant.
func (s *StatsService) compute(ctx context.Context, persist bool) (domain.StatisticsSnapshot, error) {
	var snap domain.StatisticsSnapshot
	fn := func(tx *gorm.DB) error {
		var err error
		r := repo.NewStatsRepo(tx)
		if persist {
			snap, err = r.Refresh(ctx)
		} else {
			snap, err = r.Compute(ctx)
		}
		return err
	}
	var err error
	if opts := s.txOptions(); opts != nil {
		err = s.db.WithContext(ctx).Transaction(fn, opts)
	} else {
		err = s.db.WithContext(ctx).Transaction(fn)
	}
	return snap, err
}

func (s *StatsService) txOptions() *sql.TxOptions { return database.TxOptions(s.opt.Isolation) }
