package models

import "time"

type Group struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PartyID   uint      `json:"partyId" gorm:"not null;index"`
	Code      string    `json:"code" gorm:"size:4;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Score     int       `json:"score" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// GroupMember is the group/user join relation. PartyID is copied from the
// group so that one membership per user per party is a unique index.
type GroupMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	PartyID  uint      `json:"partyId" gorm:"not null;uniqueIndex:idx_party_member"`
	GroupID  uint      `json:"groupId" gorm:"not null;uniqueIndex:idx_group_member"`
	UserID   uint      `json:"userId" gorm:"not null;uniqueIndex:idx_group_member;uniqueIndex:idx_party_member;index"`
	JoinedAt time.Time `json:"joinedAt" gorm:"autoCreateTime"`
}
