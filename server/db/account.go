package db

import (
	"context"
	"errors"
	"game-lottery/server/constant"
	"game-lottery/server/model"
	"gorm.io/gorm"
	"time"
)

type Account struct {
	Address  string    `json:"address" gorm:"primaryKey"`
	Password string    `json:"-" gorm:"not null"`
	Balance  model.Wei `json:"balance" gorm:"not null"`
	CreateAt time.Time `json:"createAt" gorm:"autoCreateTime:milli; not null"`
	UpdateAt time.Time `json:"-" gorm:"autoUpdateTime:milli; not null"`
}

type AccountDB struct {
	db *gorm.DB
}

func NewAccountDB(db *gorm.DB) *AccountDB {
	return &AccountDB{db: db}
}

func (a *AccountDB) CreateAccount(ctx context.Context, account Account) (Account, error) {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if errs := tx.Model(&Account{}).Where("address = ?", account.Address).Count(&count).Error; errs != nil {
			return errs
		}
		if count > 0 {
			return constant.AccountExistError
		}
		return tx.Create(&account).Error
	})
	return account, err
}

func (a *AccountDB) QueryByAddress(ctx context.Context, address string) (Account, error) {
	var account Account
	err := a.db.WithContext(ctx).Where("address = ?", address).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account, constant.AccountNotExistError
	}
	return account, err
}

// Receive credits a faucet payout and logs the push record.
func (a *AccountDB) Receive(ctx context.Context, address string, amount model.Wei) (Account, error) {
	var account Account
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var errs error
		if account, errs = credit(tx, address, amount, 0, HistoryReceive); errs != nil {
			return errs
		}
		return tx.Create(&model.PushRecord{Address: address, Amount: amount}).Error
	})
	return account, err
}

func (a *AccountDB) History(ctx context.Context, address string) ([]AccountHistory, error) {
	histories := make([]AccountHistory, 0, 16)
	err := a.db.WithContext(ctx).Where("address = ?", address).Order("id desc").Find(&histories).Error
	return histories, err
}

func debit(tx *gorm.DB, address string, amount model.Wei, roundNumber int, status int) (Account, error) {
	var account Account
	err := tx.Where("address = ?", address).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account, constant.AccountNotExistError
	}
	if err != nil {
		return account, err
	}

	balance, ok := account.Balance.Sub(amount)
	if !ok {
		return account, constant.InsufficientFundsError
	}
	return account, move(tx, &account, balance, amount, roundNumber, status)
}

func credit(tx *gorm.DB, address string, amount model.Wei, roundNumber int, status int) (Account, error) {
	var account Account
	err := tx.Where("address = ?", address).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account, constant.AccountNotExistError
	}
	if err != nil {
		return account, err
	}

	balance, ok := account.Balance.Add(amount)
	if !ok {
		return account, constant.BalanceOverflowError
	}
	return account, move(tx, &account, balance, amount, roundNumber, status)
}

func move(tx *gorm.DB, account *Account, balance, amount model.Wei, roundNumber int, status int) error {
	history := AccountHistory{
		Address:       account.Address,
		RoundNumber:   roundNumber,
		Status:        status,
		Amount:        amount,
		BalanceBefore: account.Balance,
	}

	if errs := tx.Model(&Account{}).Where("address = ?", account.Address).UpdateColumn("balance", balance).Error; errs != nil {
		return errs
	}
	account.Balance = balance
	return tx.Create(&history).Error
}
