package service

import (
	"context"
	"errors"
	"fmt"
	"game-lottery/server/constant"
	"game-lottery/server/db"
	"game-lottery/server/model"
	"game-lottery/server/utils"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"sync"
	"time"
)

// Store persists the contract. Each commit is applied atomically or not at
// all.
type Store interface {
	Load(ctx context.Context) (*model.Contract, []model.Participation, error)
	Deploy(ctx context.Context, organizer string) (*model.Contract, error)
	CommitParticipation(ctx context.Context, change db.ParticipationChange) error
	CommitWinner(ctx context.Context, change db.WinnerChange) error
	Rounds(ctx context.Context, limit int) ([]model.Round, error)
}

type LotteryConfig struct {
	Organizer           string    // used only when nothing is deployed yet
	MinimumContribution model.Wei // zero means 0.001 ether
}

// Lottery is the contract state machine. Mutations are serialized and staged:
// they are validated against the in-memory state, committed to the store and
// only then swapped in, so a failed call changes nothing.
type Lottery struct {
	mu       sync.RWMutex
	state    RoundState
	store    Store
	random   RandomSource
	minimum  model.Wei
	notifier *Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewLottery loads the deployed contract, deploying round 1 for
// cfg.Organizer when the store is empty.
func NewLottery(ctx context.Context, store Store, random RandomSource, notifier *Notifier, logger *zap.Logger, cfg LotteryConfig) (*Lottery, error) {
	contract, participations, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}

	if contract == nil {
		organizer, errs := utils.NormalizeAddress(cfg.Organizer)
		if errs != nil {
			return nil, fmt.Errorf("organizer %q: %w", cfg.Organizer, errs)
		}
		if contract, errs = store.Deploy(ctx, organizer); errs != nil {
			return nil, fmt.Errorf("deploy contract: %w", errs)
		}
		logger.Info("lottery deployed", zap.String("organizer", organizer))
	} else if organizer, errs := utils.NormalizeAddress(cfg.Organizer); errs == nil && organizer != contract.Organizer {
		logger.Warn("configured organizer ignored, contract already deployed",
			zap.String("configured", organizer),
			zap.String("organizer", contract.Organizer))
	}

	state := RoundState{
		RoundNumber:  contract.RoundNumber,
		Organizer:    contract.Organizer,
		Participants: make([]string, 0, len(participations)),
	}
	for _, p := range participations {
		state.Participants = append(state.Participants, p.Address)
		var ok bool
		if state.Balance, ok = state.Balance.Add(p.Amount); !ok {
			return nil, constant.BalanceOverflowError
		}
	}
	if state.Balance != contract.Balance {
		return nil, fmt.Errorf("contract balance %s does not match round %d contributions %s",
			contract.Balance, contract.RoundNumber, state.Balance)
	}

	minimum := cfg.MinimumContribution
	if minimum == 0 {
		minimum = model.Wei(constant.DefaultMinimumContribution)
	}

	logger.Info("lottery loaded",
		zap.Int("round", state.RoundNumber),
		zap.Int("participants", len(state.Participants)),
		zap.Stringer("balance", state.Balance))

	return &Lottery{
		state:    state,
		store:    store,
		random:   random,
		minimum:  minimum,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Participate admits caller into the current round with a contribution of
// value wei, debited from the caller's account.
func (l *Lottery) Participate(ctx context.Context, caller string, value model.Wei) error {
	caller, err := utils.NormalizeAddress(caller)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err = checkParticipation(&l.state, caller, value, l.minimum); err != nil {
		return err
	}

	pending, err := withParticipant(&l.state, caller, value)
	if err != nil {
		return err
	}

	now := l.now()
	txID := utils.TxID("participate", l.state.RoundNumber, caller, now.UnixNano())
	change := db.ParticipationChange{
		Participation: model.Participation{
			RoundNumber: l.state.RoundNumber,
			Position:    len(pending.Participants),
			Address:     caller,
			Amount:      value,
			TxID:        txID,
			CreateTime:  now,
		},
		Balance: pending.Balance,
	}
	if err = l.store.CommitParticipation(ctx, change); err != nil {
		l.logFailure("participate", caller, err)
		return err
	}

	l.state = pending
	l.notifier.Notify(NewParticipation{
		ParticipantAddress: caller,
		ParticipationValue: value,
		RoundNumber:        pending.RoundNumber,
		TxID:               txID,
		Timestamp:          now.UnixMilli(),
	})

	l.logger.Info("participation accepted",
		zap.String("address", caller),
		zap.Stringer("value", value),
		zap.Int("round", pending.RoundNumber),
		zap.String("tx", txID))
	return nil
}

// PickWinner draws a winner among the participants, pays the whole balance to
// them and opens the next round. Only the organizer may call it.
func (l *Lottery) PickWinner(ctx context.Context, caller string) (string, error) {
	caller, err := utils.NormalizeAddress(caller)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err = requireOrganizer(&l.state, caller); err != nil {
		return "", err
	}

	index, err := selectWinner(&l.state, l.random)
	if err != nil {
		return "", err
	}
	winner := l.state.Participants[index]

	pending := RoundState{
		RoundNumber:  l.state.RoundNumber + 1,
		Organizer:    l.state.Organizer,
		Participants: make([]string, 0),
		Balance:      0,
	}

	now := l.now()
	txID := utils.TxID("pickWinner", l.state.RoundNumber, winner, now.UnixNano())
	change := db.WinnerChange{
		Round: model.Round{
			RoundNumber:      l.state.RoundNumber,
			Winner:           winner,
			WinAmount:        l.state.Balance,
			ParticipantCount: len(l.state.Participants),
			TxID:             txID,
			CreateTime:       now,
		},
		NextRound: pending.RoundNumber,
	}
	if err = l.store.CommitWinner(ctx, change); err != nil {
		l.logFailure("pickWinner", caller, err)
		return "", err
	}

	prize := l.state.Balance
	closed := l.state.RoundNumber
	l.state = pending
	l.notifier.Notify(WinnerPicked{
		WinnerAddress: winner,
		Prize:         prize,
		RoundNumber:   closed,
		TxID:          txID,
		Timestamp:     now.UnixMilli(),
	})

	l.logger.Info("winner picked",
		zap.String("winner", winner),
		zap.Stringer("prize", prize),
		zap.Int("round", closed),
		zap.String("tx", txID))
	return winner, nil
}

// Snapshot returns a deep copy of the current state.
func (l *Lottery) Snapshot() RoundState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var snapshot RoundState
	_ = copier.CopyWithOption(&snapshot, &l.state, copier.Option{DeepCopy: true})
	if snapshot.Participants == nil {
		snapshot.Participants = make([]string, 0)
	}
	return snapshot
}

// CanParticipate reports whether address has not entered the current round.
func (l *Lottery) CanParticipate(address string) bool {
	address, err := utils.NormalizeAddress(address)
	if err != nil {
		return false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state.indexOf(address) < 0
}

// Participators returns the participants in entry order.
func (l *Lottery) Participators() []string {
	return l.Snapshot().Participants
}

func (l *Lottery) Balance() model.Wei {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state.Balance
}

func (l *Lottery) NumberOfParticipators() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.state.Participants)
}

// ParticipatorAddress returns the n-th participant, counting from 1.
func (l *Lottery) ParticipatorAddress(n int) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n < 1 || n > len(l.state.Participants) {
		return "", constant.IndexOutOfRangeError
	}
	return l.state.Participants[n-1], nil
}

func (l *Lottery) Organizer() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state.Organizer
}

func (l *Lottery) RoundNumber() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state.RoundNumber
}

func (l *Lottery) MinimumContribution() model.Wei {
	return l.minimum
}

// Rounds lists up to limit completed rounds, most recent first.
func (l *Lottery) Rounds(ctx context.Context, limit int) ([]model.Round, error) {
	return l.store.Rounds(ctx, limit)
}

func (l *Lottery) logFailure(op, caller string, err error) {
	if IsRejection(err) {
		return
	}
	l.logger.Error("commit failed",
		zap.String("op", op),
		zap.String("caller", caller),
		zap.Int("round", l.state.RoundNumber),
		zap.Error(err))
}

var rejections = []error{
	constant.InsufficientContributionError,
	constant.AlreadyRegisteredError,
	constant.UnauthorizedError,
	constant.IndexOutOfRangeError,
	constant.NoParticipantsError,
	constant.InsufficientFundsError,
	constant.AccountNotExistError,
	constant.AccountExistError,
	constant.BalanceOverflowError,
	constant.ReceiveLimitError,
	constant.InvalidAddressError,
	constant.LoginFailedError,
	constant.BalanceTooHighError,
}

// IsRejection reports whether err is a business rule rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range rejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
