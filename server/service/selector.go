package service

import (
	"encoding/binary"
	"game-lottery/server/constant"
	"game-lottery/server/utils"
	"time"
)

// RandomSource yields the raw value the winner index is derived from.
type RandomSource interface {
	Next(state RoundState) (uint64, error)
}

// RandomFunc adapts a function to RandomSource.
type RandomFunc func(state RoundState) (uint64, error)

func (f RandomFunc) Next(state RoundState) (uint64, error) {
	return f(state)
}

// BlockEntropy hashes the current time, the round number and the participant
// list with Keccak-256, the way the block-metadata draw did. Anyone who can
// predict the pick time can predict the winner; it is not a secure source.
type BlockEntropy struct {
	Now func() time.Time
}

func (b BlockEntropy) Next(state RoundState) (uint64, error) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	header := make([]byte, 16)
	binary.BigEndian.PutUint64(header[:8], uint64(now().UnixNano()))
	binary.BigEndian.PutUint64(header[8:], uint64(state.RoundNumber))

	data := [][]byte{header}
	for _, participant := range state.Participants {
		data = append(data, []byte(participant))
	}
	sum := utils.Keccak256(data...)
	return binary.BigEndian.Uint64(sum[len(sum)-8:]), nil
}

// selectWinner returns the zero-based index of the winner.
func selectWinner(state *RoundState, random RandomSource) (int, error) {
	count := len(state.Participants)
	if count == 0 {
		return 0, constant.NoParticipantsError
	}

	value, err := random.Next(*state)
	if err != nil {
		return 0, err
	}
	return int(value % uint64(count)), nil
}
