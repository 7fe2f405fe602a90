package service

import (
	"context"
	"errors"
	"game-lottery/server/constant"
	"game-lottery/server/db"
	"game-lottery/server/model"
	"game-lottery/server/utils"
	"github.com/go-crypt/crypt"
	"github.com/go-crypt/crypt/algorithm"
	"go.uber.org/zap"
	"sync"
)

// Limiter counts faucet payouts per address.
type Limiter interface {
	Count(ctx context.Context, address string) (int, error)
	Hit(ctx context.Context, address string) error
}

type AccountConfig struct {
	DefaultBalance model.Wei // credited on registration
	ReceiveAmount  model.Wei // faucet payout
	ReceiveLimit   model.Wei // no payout at or above this balance
	ReceiveCount   int       // payouts per address per day
}

type RegisterReq struct {
	Passphrase string `json:"passphrase" valid:"required,length(8|128)"`
}

type LoginReq struct {
	Address    string `json:"address" valid:"required"`
	Passphrase string `json:"passphrase" valid:"required"`
}

// AccountService manages the wallets contributions are debited from.
type AccountService struct {
	accountDB *db.AccountDB
	hasher    algorithm.Hash
	decoder   *crypt.Decoder
	limiter   Limiter
	config    AccountConfig
	logger    *zap.Logger
	mux       sync.Mutex
}

func NewAccountService(accountDB *db.AccountDB, hasher algorithm.Hash, limiter Limiter, logger *zap.Logger, config AccountConfig) (*AccountService, error) {
	decoder, err := crypt.NewDefaultDecoder()
	if err != nil {
		return nil, err
	}
	return &AccountService{
		accountDB: accountDB,
		hasher:    hasher,
		decoder:   decoder,
		limiter:   limiter,
		config:    config,
		logger:    logger,
	}, nil
}

// Register creates an account with a fresh address and the default balance.
func (a *AccountService) Register(ctx context.Context, passphrase string) (db.Account, error) {
	address, err := utils.NewAddress()
	if err != nil {
		return db.Account{}, err
	}
	return a.Import(ctx, address, passphrase, a.config.DefaultBalance)
}

// Import creates an account for a known address.
func (a *AccountService) Import(ctx context.Context, address, passphrase string, balance model.Wei) (db.Account, error) {
	address, err := utils.NormalizeAddress(address)
	if err != nil {
		return db.Account{}, err
	}

	digest, err := a.hasher.Hash(passphrase)
	if err != nil {
		return db.Account{}, err
	}

	account, err := a.accountDB.CreateAccount(ctx, db.Account{
		Address:  address,
		Password: digest.Encode(),
		Balance:  balance,
	})
	if err != nil {
		return db.Account{}, err
	}

	a.logger.Info("account created", zap.String("address", address), zap.Stringer("balance", balance))
	return account, nil
}

// EnsureAccount imports address unless it already exists.
func (a *AccountService) EnsureAccount(ctx context.Context, address, passphrase string, balance model.Wei) (db.Account, error) {
	account, err := a.Import(ctx, address, passphrase, balance)
	if errors.Is(err, constant.AccountExistError) {
		return a.Account(ctx, address)
	}
	return account, err
}

// Login checks passphrase against the stored argon2 digest.
func (a *AccountService) Login(ctx context.Context, address, passphrase string) (db.Account, error) {
	address, err := utils.NormalizeAddress(address)
	if err != nil {
		return db.Account{}, constant.LoginFailedError
	}

	account, err := a.accountDB.QueryByAddress(ctx, address)
	if errors.Is(err, constant.AccountNotExistError) {
		return db.Account{}, constant.LoginFailedError
	}
	if err != nil {
		return db.Account{}, err
	}

	digest, err := a.decoder.Decode(account.Password)
	if err != nil {
		return db.Account{}, err
	}
	if !digest.Match(passphrase) {
		return db.Account{}, constant.LoginFailedError
	}
	return account, nil
}

func (a *AccountService) Account(ctx context.Context, address string) (db.Account, error) {
	address, err := utils.NormalizeAddress(address)
	if err != nil {
		return db.Account{}, err
	}
	return a.accountDB.QueryByAddress(ctx, address)
}

func (a *AccountService) History(ctx context.Context, address string) ([]db.AccountHistory, error) {
	address, err := utils.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return a.accountDB.History(ctx, address)
}

// CanReceive checks the faucet rules for address.
func (a *AccountService) CanReceive(ctx context.Context, address string) error {
	account, err := a.Account(ctx, address)
	if err != nil {
		return err
	}

	if account.Balance >= a.config.ReceiveLimit {
		return constant.BalanceTooHighError
	}

	count, err := a.limiter.Count(ctx, account.Address)
	if err != nil {
		return err
	}
	if count >= a.config.ReceiveCount {
		return constant.ReceiveLimitError
	}
	return nil
}

// Receive pays the faucet amount to address.
func (a *AccountService) Receive(ctx context.Context, address string) (db.Account, error) {
	address, err := utils.NormalizeAddress(address)
	if err != nil {
		return db.Account{}, err
	}

	a.mux.Lock()
	defer a.mux.Unlock()

	if err = a.CanReceive(ctx, address); err != nil {
		return db.Account{}, err
	}

	account, err := a.accountDB.Receive(ctx, address, a.config.ReceiveAmount)
	if err != nil {
		return db.Account{}, err
	}

	if err = a.limiter.Hit(ctx, account.Address); err != nil {
		a.logger.Error("faucet limiter", zap.String("address", account.Address), zap.Error(err))
	}
	return account, nil
}

func (a *AccountService) ReceiveAmount() model.Wei {
	return a.config.ReceiveAmount
}
