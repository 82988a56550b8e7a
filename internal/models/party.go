package models

import "time"

type Party struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Code        string     `json:"code" gorm:"size:6;uniqueIndex;not null"` // human-shareable join code
	AdminUserID uint       `json:"adminUserId" gorm:"not null;index"`
	EndTime     *time.Time `json:"endTime"` // nil until the party is started
	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	Groups      []Group    `json:"-" gorm:"foreignKey:PartyID"`
}

const (
	PartyStatusNotStarted = "not_started"
	PartyStatusRunning    = "running"
	PartyStatusEnded      = "ended"
)

// Status derives the party phase from EndTime.
func (p *Party) Status(now time.Time) string {
	switch {
	case p.EndTime == nil:
		return PartyStatusNotStarted
	case now.Before(*p.EndTime):
		return PartyStatusRunning
	default:
		return PartyStatusEnded
	}
}
