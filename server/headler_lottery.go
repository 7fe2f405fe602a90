package src

import (
	"game-lottery/server/config"
	"game-lottery/server/constant"
	"game-lottery/server/model"
	"game-lottery/server/response"
	"net/http"
	"strconv"
)

const defaultHistoryLimit = 20

type ParticipateReq struct {
	Value model.Wei `json:"value"` // contribution in wei
}

func handlerParticipate(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	var req ParticipateReq
	if err := ParseBody(r.Body, &req); err != nil {
		response.ParamError(w)
		return
	}

	caller := r.Header.Get(constant.HeaderCustomUser)
	if err := c.Lottery.Participate(r.Context(), caller, req.Value); err != nil {
		respondError(c, w, r, err)
		return
	}
	response.Success(w)
}

func handlerPickWinner(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	winner, err := c.Lottery.PickWinner(r.Context(), r.Header.Get(constant.HeaderCustomUser))
	if err != nil {
		respondError(c, w, r, err)
		return
	}
	response.SuccessWithData(winner, w)
}

func handlerCanParticipate(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if len(address) == 0 {
		response.ParamError(w)
		return
	}
	response.SuccessWithData(c.Lottery.CanParticipate(address), w)
}

func handlerParticipators(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	response.SuccessWithData(c.Lottery.Participators(), w)
}

func handlerParticipatorCount(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	response.SuccessWithData(c.Lottery.NumberOfParticipators(), w)
}

// handlerParticipator returns the participant at the 1-based index query
// parameter.
func handlerParticipator(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		response.ParamError(w)
		return
	}

	address, err := c.Lottery.ParticipatorAddress(index)
	if err != nil {
		respondError(c, w, r, err)
		return
	}
	response.SuccessWithData(address, w)
}

func handlerLotteryBalance(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	response.SuccessWithData(c.Lottery.Balance(), w)
}

func handlerOrganizer(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	response.SuccessWithData(c.Lottery.Organizer(), w)
}

func handlerRound(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	response.SuccessWithData(c.Lottery.RoundNumber(), w)
}

func handlerState(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	response.SuccessWithData(c.Lottery.Snapshot(), w)
}

func handlerHistory(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	limit := c.Config.Lottery.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if raw := r.URL.Query().Get("limit"); len(raw) > 0 {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.ParamError(w)
			return
		}
		if n < limit {
			limit = n
		}
	}

	rounds, err := c.Lottery.Rounds(r.Context(), limit)
	if err != nil {
		respondError(c, w, r, err)
		return
	}
	response.SuccessWithData(rounds, w)
}
