package model

import "time"

// Round is the record of a completed lottery round.
type Round struct {
	ID               int       `json:"id" gorm:"primaryKey; autoIncrement"`
	RoundNumber      int       `json:"roundNumber" gorm:"uniqueIndex; not null"`
	Winner           string    `json:"winner" gorm:"not null"`
	WinAmount        Wei       `json:"winAmount" gorm:"not null"`
	ParticipantCount int       `json:"participantCount" gorm:"not null"`
	TxID             string    `json:"txId" gorm:"not null"`
	CreateTime       time.Time `json:"createTime" gorm:"autoCreateTime; not null"`
}

// Participation is one accepted contribution to a round.
type Participation struct {
	ID          int       `json:"id" gorm:"primaryKey; autoIncrement"`
	RoundNumber int       `json:"roundNumber" gorm:"uniqueIndex:idx_round_address; index:idx_round_position; not null"`
	Position    int       `json:"position" gorm:"index:idx_round_position; not null"`
	Address     string    `json:"address" gorm:"uniqueIndex:idx_round_address; not null"`
	Amount      Wei       `json:"amount" gorm:"not null"`
	TxID        string    `json:"txId" gorm:"not null"`
	CreateTime  time.Time `json:"createTime" gorm:"autoCreateTime; not null"`
}

// Contract is the single row holding the authoritative round state.
type Contract struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Organizer   string    `json:"organizer" gorm:"not null"`
	RoundNumber int       `json:"roundNumber" gorm:"not null"`
	Balance     Wei       `json:"balance" gorm:"not null"`
	CreateTime  time.Time `json:"createTime" gorm:"autoCreateTime; not null"`
	UpdateTime  time.Time `json:"updateTime" gorm:"autoUpdateTime; not null"`
}
