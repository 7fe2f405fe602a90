package service

import "game-lottery/server/constant"

// requireOrganizer rejects every caller but the organizer recorded at
// deployment.
func requireOrganizer(state *RoundState, caller string) error {
	if caller != state.Organizer {
		return constant.UnauthorizedError
	}
	return nil
}
