package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(120);not null" json:"-"`
	Orders       []Order   `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
