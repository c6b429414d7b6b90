package domain

import "time"

type AdminAccount struct {
	ID                string `gorm:"primaryKey;size:64"`
	PasswordHash      string `gorm:"size:191;not null"`
	Name              string `gorm:"size:64;not null"`
	Role              string `gorm:"size:16;not null;default:admin"`
	CanChangePassword bool   `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (AdminAccount) TableName() string { return "admin_accounts" }

// AdminProfile is what leaves the guard; the hash never does.
type AdminProfile struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	CanChangePassword bool   `json:"canChangePassword"`
}

func (a AdminAccount) Profile() AdminProfile {
	return AdminProfile{ID: a.ID, Name: a.Name, Role: a.Role, CanChangePassword: a.CanChangePassword}
}

// AdminSeed 启动时写入的管理员账号
type AdminSeed struct {
	ID                string `mapstructure:"id"`
	Name              string `mapstructure:"name"`
	Role              string `mapstructure:"role"`
	Password          string `mapstructure:"password"`
	CanChangePassword bool   `mapstructure:"can_change_password"`
}
