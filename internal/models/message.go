package models

import "time"

type Message struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	GroupID  uint      `json:"groupId" gorm:"not null;index:idx_message_group_sent"`
	SenderID uint      `json:"senderId" gorm:"not null"`
	Content  string    `json:"content" gorm:"type:text;not null"`
	SendDate time.Time `json:"sendDate" gorm:"not null;index:idx_message_group_sent"`
}
