package db

import (
	"context"
	"game-lottery/server/constant"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestAccountDB_CreateAccount(t *testing.T) {
	accountDB := NewAccountDB(openTestDB(t))
	ctx := context.Background()

	account, err := accountDB.CreateAccount(ctx, Account{Address: player1, Password: "digest", Balance: milliEther})
	require.NoError(t, err)
	require.False(t, account.CreateAt.IsZero())

	_, err = accountDB.CreateAccount(ctx, Account{Address: player1, Password: "digest"})
	require.ErrorIs(t, err, constant.AccountExistError)

	found, err := accountDB.QueryByAddress(ctx, player1)
	require.NoError(t, err)
	require.Equal(t, milliEther, found.Balance)
	require.Equal(t, "digest", found.Password)

	_, err = accountDB.QueryByAddress(ctx, player2)
	require.ErrorIs(t, err, constant.AccountNotExistError)
}

func TestAccountDB_Receive(t *testing.T) {
	db := openTestDB(t)
	seed(t, db, player1, 0)
	accountDB := NewAccountDB(db)
	ctx := context.Background()

	account, err := accountDB.Receive(ctx, player1, 3*milliEther)
	require.NoError(t, err)
	require.Equal(t, 3*milliEther, account.Balance)

	histories, err := accountDB.History(ctx, player1)
	require.NoError(t, err)
	require.Len(t, histories, 1)
	require.Equal(t, HistoryReceive, histories[0].Status)
	require.Equal(t, 3*milliEther, histories[0].Amount)

	_, err = accountDB.Receive(ctx, player2, milliEther)
	require.ErrorIs(t, err, constant.AccountNotExistError)
}
