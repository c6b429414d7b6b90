// Package user holds the external identity table. Rows are owned by the auth
// provider; this service reads them and only writes password_hash on reset.
package user

import (
	"time"

	"gorm.io/gorm"
)

type UserModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:191;not null"`
	DisplayName  string `gorm:"size:64"`
	PasswordHash string `gorm:"size:100"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string { return "users" }
