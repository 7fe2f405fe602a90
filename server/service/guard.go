package service

import (
	"game-lottery/server/constant"
	"game-lottery/server/model"
)

// checkParticipation admits caller into state when value covers minimum and
// caller has not entered the round yet.
func checkParticipation(state *RoundState, caller string, value, minimum model.Wei) error {
	if value < minimum {
		return constant.InsufficientContributionError
	}
	if state.indexOf(caller) >= 0 {
		return constant.AlreadyRegisteredError
	}
	return nil
}

// withParticipant returns the pending state after caller contributed value.
// state is left untouched.
func withParticipant(state *RoundState, caller string, value model.Wei) (RoundState, error) {
	balance, ok := state.Balance.Add(value)
	if !ok {
		return RoundState{}, constant.BalanceOverflowError
	}

	participants := make([]string, len(state.Participants), len(state.Participants)+1)
	copy(participants, state.Participants)

	return RoundState{
		RoundNumber:  state.RoundNumber,
		Organizer:    state.Organizer,
		Participants: append(participants, caller),
		Balance:      balance,
	}, nil
}
