package models

import "time"

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	HashedEmail string    `json:"hashedEmail" gorm:"uniqueIndex;not null"` // hashed client-side before transmission
	Username    string    `json:"username" gorm:"not null"`
	Color       string    `json:"color" gorm:"size:32"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
