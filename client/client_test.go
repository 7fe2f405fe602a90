package client

import (
	"context"
	"fmt"
	src "game-lottery/server"
	"game-lottery/server/config"
	"game-lottery/server/constant"
	"game-lottery/server/db"
	"game-lottery/server/model"
	"game-lottery/server/service"
	"github.com/go-crypt/crypt/algorithm/argon2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	organizer           = "0x5b38da6a701c568545dcfcb03fcb875f56beddc4"
	organizerPassphrase = "organizer passphrase"

	milliEther model.Wei = 1_000_000_000_000_000
)

type noLimit struct{}

func (noLimit) Count(context.Context, string) (int, error) { return 0, nil }

func (noLimit) Hit(context.Context, string) error { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	hasher, err := argon2.New(argon2.WithVariantName("argon2id"), argon2.WithT(1), argon2.WithM(1024), argon2.WithP(1), argon2.WithK(32), argon2.WithS(16))
	require.NoError(t, err)

	accounts, err := service.NewAccountService(db.NewAccountDB(database), hasher, noLimit{}, logger, service.AccountConfig{
		DefaultBalance: 1000 * milliEther,
		ReceiveAmount:  100 * milliEther,
		ReceiveLimit:   10000 * milliEther,
		ReceiveCount:   3,
	})
	require.NoError(t, err)
	_, err = accounts.EnsureAccount(ctx, organizer, organizerPassphrase, 0)
	require.NoError(t, err)

	hub := service.NewHub(logger, 16)
	notifier := service.NewNotifier(logger, hub)
	lottery, err := service.NewLottery(ctx, db.NewContractDB(database), service.BlockEntropy{}, notifier, logger, service.LotteryConfig{Organizer: organizer})
	require.NoError(t, err)

	serverConfig, err := config.NewServerConfig(config.Configuration{Jwt: config.Jwt{Secret: "test", ExpireHours: 1}}, config.NewWebSocket(), hub, lottery, accounts, logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	src.NewServeMux(mux, serverConfig)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		notifier.Close()
		if sqlDB, errs := database.DB(); errs == nil {
			sqlDB.Close()
		}
	})
	return srv
}

func TestClient_Scenario(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	owner := New(srv.URL)
	_, err := owner.Login(ctx, organizer, organizerPassphrase)
	require.NoError(t, err)
	require.NotEmpty(t, owner.Token())

	player := New(srv.URL)
	account, err := player.Register(ctx, "player passphrase")
	require.NoError(t, err)
	_, err = player.Login(ctx, account.Address, "player passphrase")
	require.NoError(t, err)

	organizerAddress, err := player.Organizer(ctx)
	require.NoError(t, err)
	require.Equal(t, organizer, organizerAddress)

	require.NoError(t, player.Participate(ctx, milliEther))
	require.ErrorIs(t, player.Participate(ctx, milliEther), constant.AlreadyRegisteredError)

	balance, err := player.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, milliEther, balance)

	first, err := player.ParticipatorAddress(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, account.Address, first)

	_, err = player.ParticipatorAddress(ctx, 2)
	require.ErrorIs(t, err, constant.IndexOutOfRangeError)

	_, err = player.PickWinner(ctx)
	require.ErrorIs(t, err, constant.UnauthorizedError)

	winner, err := owner.PickWinner(ctx)
	require.NoError(t, err)
	require.Equal(t, account.Address, winner)

	balance, err = player.Balance(ctx)
	require.NoError(t, err)
	require.Equal(t, model.Wei(0), balance)

	round, err := player.RoundNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, round)

	ok, err := player.CanParticipate(ctx, account.Address)
	require.NoError(t, err)
	require.True(t, ok)

	count, err := player.NumberOfParticipators(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	participators, err := player.Participators(ctx)
	require.NoError(t, err)
	require.Empty(t, participators)

	rounds, err := player.History(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rounds, 1)

	mine, err := player.Account(ctx)
	require.NoError(t, err)
	require.Equal(t, 1000*milliEther, mine.Balance)

	mine, err = player.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1100*milliEther, mine.Balance)
}

func TestClient_Watch(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	player := New(srv.URL)
	account, err := player.Register(ctx, "player passphrase")
	require.NoError(t, err)
	_, err = player.Login(ctx, account.Address, "player passphrase")
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		states []service.RoundState
		events []service.Event
	)
	done := make(chan error, 1)
	go func() {
		done <- New(srv.URL).Watch(ctx, func(state service.RoundState, ev service.Event) {
			mu.Lock()
			defer mu.Unlock()
			states = append(states, state)
			if ev != nil {
				events = append(events, ev)
			}
		})
	}()

	// the snapshot arrives once the subscription is live
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, player.Participate(ctx, 2*milliEther))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	ev := events[0].(service.NewParticipation)
	require.Equal(t, account.Address, ev.ParticipantAddress)
	require.Equal(t, 2*milliEther, ev.ParticipationValue)
	last := states[len(states)-1]
	require.Equal(t, []string{account.Address}, last.Participants)
	require.Equal(t, 2*milliEther, last.Balance)
	mu.Unlock()

	cancel()
	select {
	case err = <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{Code: constant.Code20005, Message: "No participants in the current round"}
	require.ErrorIs(t, err, constant.NoParticipantsError)
	require.Contains(t, err.Error(), "20005")

	unknown := &APIError{Code: constant.Code99999, Message: "System error"}
	require.Nil(t, unknown.Unwrap())
}
