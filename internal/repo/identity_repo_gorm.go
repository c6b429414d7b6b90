package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"socialdesk/internal/domain"
	"socialdesk/internal/feature/user"
)

// IdentityDirectory reads the auth provider's users table and performs the
// password mutation on its behalf.
type IdentityDirectory struct {
	db     *gorm.DB
	hasher domain.PasswordHasher
}

var (
	_ domain.IdentityLookup   = (*IdentityDirectory)(nil)
	_ domain.CredentialSetter = (*IdentityDirectory)(nil)
)

func NewIdentityDirectory(db *gorm.DB, hasher domain.PasswordHasher) *IdentityDirectory {
	return &IdentityDirectory{db: db, hasher: hasher}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (d *IdentityDirectory) Resolve(ctx context.Context, email string) (string, bool, error) {
	var u user.UserModel
	err := d.db.WithContext(ctx).Select("id").Where("LOWER(email) = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u.ID, true, nil
}

func (d *IdentityDirectory) Profile(ctx context.Context, id string) (*domain.UserProfile, error) {
	var u user.UserModel
	err := d.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.UserProfile{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}, nil
}

func (d *IdentityDirectory) SetPassword(ctx context.Context, userID, newPassword string) error {
	hash, err := d.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	res := d.db.WithContext(ctx).Model(&user.UserModel{}).Where("id = ?", userID).Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
