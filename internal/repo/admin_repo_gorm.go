package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"socialdesk/internal/domain"
)

type AdminRepo struct{ db *gorm.DB }

func NewAdminRepo(db *gorm.DB) *AdminRepo { return &AdminRepo{db: db} }

func (r *AdminRepo) FindByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	var a domain.AdminAccount
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateIfAbsent never overwrites an existing account.
func (r *AdminRepo) CreateIfAbsent(ctx context.Context, a *domain.AdminAccount) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(a)
	return res.RowsAffected == 1, res.Error
}

// SwapPasswordHash replaces the hash only if it still equals oldHash.
func (r *AdminRepo) SwapPasswordHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.AdminAccount{}).
		Where("id = ? AND password_hash = ?", id, oldHash).
		Update("password_hash", newHash)
	return res.RowsAffected == 1, res.Error
}
