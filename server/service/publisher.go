package service

import (
	"context"
	"fmt"
	"game-lottery/server/utils"
	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"net/smtp"
)

// RedisPublisher relays events to a redis pub/sub channel so processes other
// than the websocket server can follow the lottery.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (r *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	msg, err := NewEventMessage(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, msg.ToJsonStr()).Err()
}

// MailFunc sends one plain text mail.
type MailFunc func(auth smtp.Auth, addr, from string, to []string, subject, msg string) error

// WinnerMailer mails the configured recipients when a winner is picked.
type WinnerMailer struct {
	Auth smtp.Auth
	Addr string
	From string
	To   []string
	Send MailFunc
}

func NewWinnerMailer(auth smtp.Auth, addr, from string, to []string) *WinnerMailer {
	return &WinnerMailer{Auth: auth, Addr: addr, From: from, To: to, Send: utils.SendEmail}
}

func (m *WinnerMailer) Publish(_ context.Context, ev Event) error {
	picked, ok := ev.(WinnerPicked)
	if !ok || len(m.To) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Lottery round %d winner", picked.RoundNumber)
	body := fmt.Sprintf("Round %d was won by %s with a prize of %s ether.\nTransaction: %s\n",
		picked.RoundNumber, picked.WinnerAddress, utils.FromWei(picked.Prize), picked.TxID)
	return m.Send(m.Auth, m.Addr, m.From, m.To, subject, body)
}

// ChannelSender is the part of *discordgo.Session the announcer needs.
type ChannelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts every event to a Discord channel.
type DiscordAnnouncer struct {
	session   ChannelSender
	channelID string
}

func NewDiscordAnnouncer(session ChannelSender, channelID string) *DiscordAnnouncer {
	return &DiscordAnnouncer{session: session, channelID: channelID}
}

func (d *DiscordAnnouncer) Publish(ctx context.Context, ev Event) error {
	var content string
	switch e := ev.(type) {
	case NewParticipation:
		content = fmt.Sprintf("`%s` joined round **%d** with %s ether",
			e.ParticipantAddress, e.RoundNumber, utils.FromWei(e.ParticipationValue))
	case WinnerPicked:
		content = fmt.Sprintf(":tada: `%s` won round **%d** and takes %s ether",
			e.WinnerAddress, e.RoundNumber, utils.FromWei(e.Prize))
	default:
		return nil
	}

	_, err := d.session.ChannelMessageSend(d.channelID, content, discordgo.WithContext(ctx))
	return err
}
