package db

import (
	"game-lottery/server/model"
	"time"
)

// Account history states
const (
	HistoryContribute = iota + 1 // contribution to a round
	HistoryWin                   // round payout
	HistoryReceive               // faucet
)

type AccountHistory struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement;not null"`
	Address       string    `json:"address" gorm:"index; not null"`
	RoundNumber   int       `json:"roundNumber"`
	Status        int       `json:"status"`
	Amount        model.Wei `json:"amount"`
	BalanceBefore model.Wei `json:"balanceBefore"`
	CreateAt      time.Time `json:"createTime" gorm:"autoCreateTime:milli; not null"`
}
