package db

import (
	"context"
	"errors"
	"game-lottery/server/model"
	"gorm.io/gorm"
)

// contractRowID is the primary key of the single contract row.
const contractRowID = 1

var StaleRoundError = errors.New("contract round changed underneath the commit")

// ParticipationChange is the staged effect of one accepted contribution.
type ParticipationChange struct {
	Participation model.Participation
	Balance       model.Wei // contract balance after the contribution
}

// WinnerChange is the staged effect of a winner pick.
type WinnerChange struct {
	Round     model.Round
	NextRound int
}

type ContractDB struct {
	db *gorm.DB
}

func NewContractDB(db *gorm.DB) *ContractDB {
	return &ContractDB{db: db}
}

// Load returns the deployed contract and the participations of its current
// round. A nil contract means nothing was deployed yet.
func (c *ContractDB) Load(ctx context.Context) (*model.Contract, []model.Participation, error) {
	var contract model.Contract
	err := c.db.WithContext(ctx).First(&contract, contractRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	participations := make([]model.Participation, 0)
	err = c.db.WithContext(ctx).
		Where("round_number = ?", contract.RoundNumber).
		Order("position asc").
		Find(&participations).Error
	return &contract, participations, err
}

// Deploy creates round 1 owned by organizer.
func (c *ContractDB) Deploy(ctx context.Context, organizer string) (*model.Contract, error) {
	contract := model.Contract{
		ID:          contractRowID,
		Organizer:   organizer,
		RoundNumber: 1,
		Balance:     0,
	}
	err := c.db.WithContext(ctx).Create(&contract).Error
	return &contract, err
}

// CommitParticipation debits the participant and records the contribution
// in one transaction.
func (c *ContractDB) CommitParticipation(ctx context.Context, change ParticipationChange) error {
	p := change.Participation
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := debit(tx, p.Address, p.Amount, p.RoundNumber, HistoryContribute); err != nil {
			return err
		}

		if err := tx.Create(&p).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Contract{}).
			Where("id = ? AND round_number = ?", contractRowID, p.RoundNumber).
			UpdateColumn("balance", change.Balance)
		return checkUpdated(result)
	})
}

// CommitWinner pays the winner, closes the round and opens the next one in
// one transaction.
func (c *ContractDB) CommitWinner(ctx context.Context, change WinnerChange) error {
	r := change.Round
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := credit(tx, r.Winner, r.WinAmount, r.RoundNumber, HistoryWin); err != nil {
			return err
		}

		if err := tx.Create(&r).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Contract{}).
			Where("id = ? AND round_number = ?", contractRowID, r.RoundNumber).
			UpdateColumns(map[string]any{
				"round_number": change.NextRound,
				"balance":      model.Wei(0),
			})
		return checkUpdated(result)
	})
}

func checkUpdated(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return StaleRoundError
	}
	return nil
}

// Rounds lists completed rounds, most recent first.
func (c *ContractDB) Rounds(ctx context.Context, limit int) ([]model.Round, error) {
	rounds := make([]model.Round, 0)
	err := c.db.WithContext(ctx).Order("round_number desc").Limit(limit).Find(&rounds).Error
	return rounds, err
}
