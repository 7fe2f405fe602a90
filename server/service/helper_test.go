package service

import (
	"context"
	"fmt"
	"game-lottery/server/db"
	"game-lottery/server/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"strings"
	"sync"
	"testing"
)

const (
	organizer = "0x5b38da6a701c568545dcfcb03fcb875f56beddc4"
	player1   = "0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2"
	player2   = "0x4b20993bc481177ec7e8f571cecae8a9e22c02db"
	player3   = "0x78731d3ca6b7e34ac0f824c42a7cc18a495cabab"

	milliEther model.Wei = 1_000_000_000_000_000
	oneEther   model.Wei = 1_000_000_000_000_000_000
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Event(nil), r.events...)
}

func fixedRandom(value uint64) RandomSource {
	return RandomFunc(func(RoundState) (uint64, error) {
		return value, nil
	})
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, errs := database.DB()
		if errs == nil {
			sqlDB.Close()
		}
	})
	return database
}

type fixture struct {
	db       *gorm.DB
	accounts *db.AccountDB
	notifier *Notifier
	events   *recorder
	lottery  *Lottery
}

// newFixture deploys a lottery for organizer with funded accounts for every
// test address.
func newFixture(t *testing.T, random RandomSource) *fixture {
	t.Helper()
	database := openTestDB(t)

	f := &fixture{
		db:       database,
		accounts: db.NewAccountDB(database),
		events:   &recorder{},
	}
	for _, address := range []string{organizer, player1, player2, player3} {
		f.fund(t, address, oneEther)
	}

	f.notifier = NewNotifier(zaptest.NewLogger(t), f.events)
	t.Cleanup(f.notifier.Close)

	var err error
	f.lottery, err = NewLottery(context.Background(), db.NewContractDB(database), random, f.notifier, zaptest.NewLogger(t), LotteryConfig{Organizer: organizer})
	require.NoError(t, err)
	return f
}

func (f *fixture) fund(t *testing.T, address string, balance model.Wei) {
	t.Helper()
	_, err := f.accounts.CreateAccount(context.Background(), db.Account{Address: address, Password: "-", Balance: balance})
	require.NoError(t, err)
}

func (f *fixture) balanceOf(t *testing.T, address string) model.Wei {
	t.Helper()
	account, err := f.accounts.QueryByAddress(context.Background(), address)
	require.NoError(t, err)
	return account.Balance
}

// flush waits for queued events and returns everything published so far.
func (f *fixture) flush() []Event {
	f.notifier.Close()
	return f.events.Events()
}
