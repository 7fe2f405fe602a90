package src

import (
	"game-lottery/server/config"
	"game-lottery/server/constant"
	"game-lottery/server/db"
	"game-lottery/server/response"
	"game-lottery/server/service"
	"game-lottery/server/utils"
	"go.uber.org/zap"
	"net/http"
)

type TempAccount struct {
	db.Account
	Token string `json:"token"`
}

type ReceiveReq struct {
	Receive bool `json:"receive"` // false only previews the payout
}

func handlerAccountRegister(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	var req service.RegisterReq
	if err := ParseBody(r.Body, &req); err != nil {
		response.ParamError(w)
		return
	}

	account, err := c.AccountService.Register(r.Context(), req.Passphrase)
	if err != nil {
		respondError(c, w, r, err)
		return
	}
	response.SuccessWithData(account, w)
}

func handlerAccountLogin(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	var req service.LoginReq
	if err := ParseBody(r.Body, &req); err != nil {
		response.ParamError(w)
		return
	}

	account, err := c.AccountService.Login(r.Context(), req.Address, req.Passphrase)
	if err != nil {
		respondError(c, w, r, err)
		return
	}

	token, err := utils.CreateJWT(c.JwtSecret, account.Address, c.JwtTTL)
	if err != nil {
		c.Logger.Error("create JWT", zap.Error(err))
		response.SystemError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	response.SuccessWithData(TempAccount{account, token}, w)
}

func handlerAccountBalance(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	account, err := c.AccountService.Account(r.Context(), r.Header.Get(constant.HeaderCustomUser))
	if err != nil {
		respondError(c, w, r, err)
		return
	}
	response.SuccessWithData(account, w)
}

func handlerAccountHistory(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	histories, err := c.AccountService.History(r.Context(), r.Header.Get(constant.HeaderCustomUser))
	if err != nil {
		respondError(c, w, r, err)
		return
	}
	response.SuccessWithData(histories, w)
}

// handlerReceiveCoin pays the faucet amount, at most receive_count times a
// day and only below receive_limit.
func handlerReceiveCoin(c *config.ServerConfig, w http.ResponseWriter, r *http.Request) {
	var receive ReceiveReq
	if err := ParseBody(r.Body, &receive); err != nil {
		response.ParamError(w)
		return
	}

	address := r.Header.Get(constant.HeaderCustomUser)
	if !receive.Receive {
		if err := c.AccountService.CanReceive(r.Context(), address); err != nil {
			respondError(c, w, r, err)
			return
		}
		response.SuccessWithData(c.AccountService.ReceiveAmount(), w)
		return
	}

	account, err := c.AccountService.Receive(r.Context(), address)
	if err != nil {
		respondError(c, w, r, err)
		return
	}
	response.SuccessWithData(account, w)
}
