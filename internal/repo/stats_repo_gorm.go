package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socialdesk/internal/domain"
	"socialdesk/internal/feature/user"
)

type StatsRepo struct{ db *gorm.DB }

func NewStatsRepo(db *gorm.DB) *StatsRepo { return &StatsRepo{db: db} }

// Compute counts users and tickets in one statement, so all four counters
// come from the same snapshot whatever the isolation level.
func (r *StatsRepo) Compute(ctx context.Context) (domain.StatisticsSnapshot, error) {
	s := domain.StatisticsSnapshot{ID: domain.StatisticsRowID}
	var row struct {
		Users    int64
		Total    int64
		Pending  int64
		Resolved int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Ticket{}).Select(
		"(SELECT COUNT(*) FROM "+user.UserModel{}.TableName()+" WHERE deleted_at IS NULL) AS users, "+
			"COUNT(*) AS total, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS resolved",
		domain.TicketPending, domain.TicketResolved,
	).Scan(&row).Error
	if err != nil {
		return s, err
	}
	s.TotalUsers = row.Users
	s.TotalTickets, s.PendingTickets, s.ResolvedTickets = row.Total, row.Pending, row.Resolved
	s.LastUpdated = time.Now().UTC()
	return s, nil
}

// Upsert overwrites the singleton row; concurrent writers resolve by last commit.
func (r *StatsRepo) Upsert(ctx context.Context, s *domain.StatisticsSnapshot) error {
	s.ID = domain.StatisticsRowID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(s).Error
}

// Refresh computes and persists in one go.
func (r *StatsRepo) Refresh(ctx context.Context) (domain.StatisticsSnapshot, error) {
	s, err := r.Compute(ctx)
	if err != nil {
		return s, err
	}
	return s, r.Upsert(ctx, &s)
}

// RefreshLocked makes sure the singleton row exists, takes its row lock and
// only then counts. A concurrent writer blocks on the lock until the previous
// one commits, so under read committed its counts include that commit.
// SQLite has no row locks; the dialect drops the FOR UPDATE clause.
func (r *StatsRepo) RefreshLocked(ctx context.Context) (domain.StatisticsSnapshot, error) {
	db := r.db.WithContext(ctx)
	seed := domain.StatisticsSnapshot{ID: domain.StatisticsRowID, LastUpdated: time.Now().UTC()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return domain.StatisticsSnapshot{}, err
	}
	var held domain.StatisticsSnapshot
	if err := lockSingleton(db, &held).Error; err != nil {
		return domain.StatisticsSnapshot{}, err
	}
	return r.Refresh(ctx)
}

func lockSingleton(db *gorm.DB, dest *domain.StatisticsSnapshot) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", domain.StatisticsRowID).Take(dest)
}

func (r *StatsRepo) Load(ctx context.Context) (*domain.StatisticsSnapshot, error) {
	var s domain.StatisticsSnapshot
	err := r.db.WithContext(ctx).First(&s, "id = ?", domain.StatisticsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StatsRepo) RowCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.StatisticsSnapshot{}).Count(&n).Error
	return n, err
}
