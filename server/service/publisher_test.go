package service

import (
	"context"
	"game-lottery/server/constant"
	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"net/smtp"
	"os"
	"testing"
	"time"
)

type sentMail struct {
	addr, from string
	to         []string
	subject    string
	msg        string
}

func TestWinnerMailer(t *testing.T) {
	var sent []sentMail
	mailer := NewWinnerMailer(nil, "smtp.example.com:587", "lottery@example.com", []string{"organizer@example.com"})
	mailer.Send = func(auth smtp.Auth, addr, from string, to []string, subject, msg string) error {
		sent = append(sent, sentMail{addr, from, to, subject, msg})
		return nil
	}

	ctx := context.Background()
	require.NoError(t, mailer.Publish(ctx, NewParticipation{ParticipantAddress: player1, ParticipationValue: milliEther}))
	require.Empty(t, sent)

	require.NoError(t, mailer.Publish(ctx, WinnerPicked{WinnerAddress: player2, Prize: 3 * milliEther, RoundNumber: 7, TxID: "tx"}))
	require.Len(t, sent, 1)
	require.Equal(t, "smtp.example.com:587", sent[0].addr)
	require.Equal(t, []string{"organizer@example.com"}, sent[0].to)
	require.Equal(t, "Lottery round 7 winner", sent[0].subject)
	require.Contains(t, sent[0].msg, player2)
	require.Contains(t, sent[0].msg, "0.003 ether")
}

type fakeChannel struct {
	channelID string
	contents  []string
}

func (f *fakeChannel) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channelID = channelID
	f.contents = append(f.contents, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func TestDiscordAnnouncer(t *testing.T) {
	channel := &fakeChannel{}
	announcer := NewDiscordAnnouncer(channel, "123")
	ctx := context.Background()

	require.NoError(t, announcer.Publish(ctx, NewParticipation{ParticipantAddress: player1, ParticipationValue: milliEther, RoundNumber: 1}))
	require.NoError(t, announcer.Publish(ctx, WinnerPicked{WinnerAddress: player1, Prize: milliEther, RoundNumber: 1}))

	require.Equal(t, "123", channel.channelID)
	require.Len(t, channel.contents, 2)
	require.Contains(t, channel.contents[0], "joined round **1** with 0.001 ether")
	require.Contains(t, channel.contents[1], "won round **1**")
}

// needs a redis server, e.g. REDIS_ADDR=127.0.0.1:6379
func TestRedisPublisherAndLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	channel := constant.RedisEventChannel + ":" + t.Name()
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, NewRedisPublisher(client, channel).Publish(ctx, WinnerPicked{WinnerAddress: player3, RoundNumber: 9}))
	select {
	case m := <-sub.Channel():
		msg := decodeMessage(t, []byte(m.Payload))
		ev, errs := msg.DecodeEvent()
		require.NoError(t, errs)
		require.Equal(t, player3, ev.(WinnerPicked).WinnerAddress)
	case <-time.After(5 * time.Second):
		t.Fatal("no event relayed")
	}

	limiter := NewRedisLimiter(client, "test:"+t.Name()+":")
	key := "test:" + t.Name() + ":" + player1
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	count, err := limiter.Count(ctx, player1)
	require.NoError(t, err)
	require.Equal(t, 0, count)
	require.NoError(t, limiter.Hit(ctx, player1))
	require.NoError(t, limiter.Hit(ctx, player1))
	count, err = limiter.Count(ctx, player1)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	require.True(t, ttl > 0 && ttl <= 24*time.Hour)
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), nextMidnight(now))
}
