package entity

import "time"

type User struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
	FirstName string
	Username  string
	Exports   int `gorm:"not null;default:0"`
}
