package models

import "time"

type Challenge struct {
	ID            uint                    `json:"id" gorm:"primaryKey"`
	Title         string                  `json:"title" gorm:"not null"`
	Flag          string                  `json:"-" gorm:"not null"` // expected answer, never serialized
	Hint          string                  `json:"hint" gorm:"type:text"`
	Points        int                     `json:"points" gorm:"not null;default:0"`
	Illustrations []ChallengeIllustration `json:"illustrations,omitempty" gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE"`
}

// ChallengeIllustration points at an object in the illustration bucket.
type ChallengeIllustration struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ChallengeID uint   `json:"challengeId" gorm:"not null;index"`
	ObjectKey   string `json:"objectKey" gorm:"not null"`
	Position    int    `json:"position" gorm:"not null;default:0"`
}

// ChallengeProgress records one group's attempt state for one challenge.
// There is at most one row per (GroupID, ChallengeID).
type ChallengeProgress struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	GroupID     uint      `json:"groupId" gorm:"not null;uniqueIndex:idx_progress_group_challenge"`
	ChallengeID uint      `json:"challengeId" gorm:"not null;uniqueIndex:idx_progress_group_challenge"`
	IsCompleted bool      `json:"isCompleted" gorm:"not null;default:false"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (ChallengeProgress) TableName() string { return "challenge_progress" }
