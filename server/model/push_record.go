package model

import "time"

// PushRecord logs a faucet payout to an account.
type PushRecord struct {
	ID         int       `json:"id" gorm:"primaryKey; autoIncrement"`
	Address    string    `json:"address" gorm:"index; not null"`
	Amount     Wei       `json:"amount" gorm:"not null"`
	CreateTime time.Time `json:"createTime" gorm:"autoCreateTime; not null"`
}
