package repo

import (
	"gorm.io/gorm"

	"socialdesk/internal/domain"
	"socialdesk/internal/feature/user"
)

// Models lists every table this service migrates.
func Models() []any {
	return []any{
		&user.UserModel{},
		&domain.Friendship{},
		&domain.FriendRequest{},
		&domain.Notification{},
		&domain.Ticket{},
		&domain.StatisticsSnapshot{},
		&domain.AdminAccount{},
	}
}

func Migrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
