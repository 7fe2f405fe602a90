// Package client reads and mutates a lottery server over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"game-lottery/server/constant"
	"game-lottery/server/model"
	"game-lottery/server/service"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Account struct {
	Address string    `json:"address"`
	Balance model.Wei `json:"balance"`
	Token   string    `json:"token,omitempty"`
}

// APIError is a non-OK response envelope. It unwraps to the matching
// sentinel error so callers can use errors.Is.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lottery: %s (code %d)", e.Message, e.Code)
}

var sentinels = map[int]error{
	constant.Code10002: constant.AccountExistError,
	constant.Code10007: constant.LoginFailedError,
	constant.Code10009: constant.ReceiveLimitError,
	constant.Code10010: constant.AccountNotExistError,
	constant.Code10013: constant.BalanceTooHighError,
	constant.Code20001: constant.InsufficientContributionError,
	constant.Code20002: constant.AlreadyRegisteredError,
	constant.Code20003: constant.UnauthorizedError,
	constant.Code20004: constant.IndexOutOfRangeError,
	constant.Code20005: constant.NoParticipantsError,
	constant.Code20006: constant.InsufficientFundsError,
}

func (e *APIError) Unwrap() error {
	return sentinels[e.Code]
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken sets the JWT sent with authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lottery: %s %s: %s", method, path, resp.Status)
	}

	var envelope struct {
		Code    int             `json:"code"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("lottery: decode %s: %w", path, err)
	}
	if envelope.Code != constant.Code10000 {
		return &APIError{Code: envelope.Code, Message: envelope.Message}
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

func (c *Client) Register(ctx context.Context, passphrase string) (Account, error) {
	var account Account
	err := c.do(ctx, http.MethodPost, "/api/account/register", nil, service.RegisterReq{Passphrase: passphrase}, &account)
	return account, err
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, address, passphrase string) (Account, error) {
	var account Account
	err := c.do(ctx, http.MethodPost, "/api/account/login", nil, service.LoginReq{Address: address, Passphrase: passphrase}, &account)
	if err == nil {
		c.token = account.Token
	}
	return account, err
}

func (c *Client) Account(ctx context.Context) (Account, error) {
	var account Account
	err := c.do(ctx, http.MethodGet, "/api/account/balance", nil, nil, &account)
	return account, err
}

func (c *Client) Receive(ctx context.Context) (Account, error) {
	var account Account
	err := c.do(ctx, http.MethodPost, "/api/account/receive", nil, map[string]bool{"receive": true}, &account)
	return account, err
}

func (c *Client) Participate(ctx context.Context, value model.Wei) error {
	return c.do(ctx, http.MethodPost, "/api/lottery/participate", nil, map[string]model.Wei{"value": value}, nil)
}

func (c *Client) PickWinner(ctx context.Context) (string, error) {
	var winner string
	err := c.do(ctx, http.MethodPost, "/api/lottery/pickWinner", nil, struct{}{}, &winner)
	return winner, err
}

func (c *Client) CanParticipate(ctx context.Context, address string) (bool, error) {
	var ok bool
	err := c.do(ctx, http.MethodGet, "/api/lottery/canParticipate", url.Values{"address": {address}}, nil, &ok)
	return ok, err
}

func (c *Client) Participators(ctx context.Context) ([]string, error) {
	participators := make([]string, 0)
	err := c.do(ctx, http.MethodGet, "/api/lottery/participators", nil, nil, &participators)
	return participators, err
}

func (c *Client) NumberOfParticipators(ctx context.Context) (int, error) {
	var count int
	err := c.do(ctx, http.MethodGet, "/api/lottery/participators/count", nil, nil, &count)
	return count, err
}

// ParticipatorAddress returns the n-th participant, counting from 1.
func (c *Client) ParticipatorAddress(ctx context.Context, n int) (string, error) {
	var address string
	err := c.do(ctx, http.MethodGet, "/api/lottery/participator", url.Values{"index": {strconv.Itoa(n)}}, nil, &address)
	return address, err
}

func (c *Client) Balance(ctx context.Context) (model.Wei, error) {
	var balance model.Wei
	err := c.do(ctx, http.MethodGet, "/api/lottery/balance", nil, nil, &balance)
	return balance, err
}

func (c *Client) Organizer(ctx context.Context) (string, error) {
	var organizer string
	err := c.do(ctx, http.MethodGet, "/api/lottery/organizer", nil, nil, &organizer)
	return organizer, err
}

func (c *Client) RoundNumber(ctx context.Context) (int, error) {
	var round int
	err := c.do(ctx, http.MethodGet, "/api/lottery/round", nil, nil, &round)
	return round, err
}

func (c *Client) State(ctx context.Context) (service.RoundState, error) {
	var state service.RoundState
	err := c.do(ctx, http.MethodGet, "/api/lottery/state", nil, nil, &state)
	return state, err
}

func (c *Client) History(ctx context.Context, limit int) ([]model.Round, error) {
	rounds := make([]model.Round, 0)
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	err := c.do(ctx, http.MethodGet, "/api/lottery/history", query, nil, &rounds)
	return rounds, err
}
