package response

import (
	"encoding/json"
	"errors"
	"game-lottery/server/constant"
	"game-lottery/server/model"
	"io"
	"net/http"
)

func Response(code int, data any, message string, w http.ResponseWriter) {
	response := model.Response{
		Code:    code,
		Data:    data,
		Message: message,
	}
	marshal, _ := json.Marshal(response)
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, string(marshal))
}

// Success writes an OK envelope.
func Success(w http.ResponseWriter) {
	Response(constant.Code10000, nil, constant.OK, w)
}

func SuccessWithData(data any, w http.ResponseWriter) {
	Response(constant.Code10000, data, constant.OK, w)
}

// Fail writes an error envelope with code and message.
func Fail(code int, message string, w http.ResponseWriter) {
	Response(code, nil, message, w)
}

// Error maps err to its response code. Unknown errors become system errors.
func Error(err error, w http.ResponseWriter) {
	code := ErrorCode(err)
	if code == constant.Code99999 {
		SystemError(w)
		return
	}
	Response(code, nil, err.Error(), w)
}

// ParamError reports an invalid request body or query.
func ParamError(w http.ResponseWriter) {
	Response(constant.Code10001, nil, constant.ParamError, w)
}

func SystemError(w http.ResponseWriter) {
	Response(constant.Code99999, nil, constant.Error, w)
}

var codes = []struct {
	err  error
	code int
}{
	{constant.InvalidAddressError, constant.Code10001},
	{constant.BalanceOverflowError, constant.Code10001},
	{constant.AccountExistError, constant.Code10002},
	{constant.LoginFailedError, constant.Code10007},
	{constant.ReceiveLimitError, constant.Code10009},
	{constant.AccountNotExistError, constant.Code10010},
	{constant.BalanceTooHighError, constant.Code10013},
	{constant.InsufficientContributionError, constant.Code20001},
	{constant.AlreadyRegisteredError, constant.Code20002},
	{constant.UnauthorizedError, constant.Code20003},
	{constant.IndexOutOfRangeError, constant.Code20004},
	{constant.NoParticipantsError, constant.Code20005},
	{constant.InsufficientFundsError, constant.Code20006},
}

func ErrorCode(err error) int {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return constant.Code99999
}
