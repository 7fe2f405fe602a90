package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"game-lottery/server/constant"
	"game-lottery/server/service"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"strings"
)

// StateFunc receives the refreshed state. ev is nil for the initial snapshot.
type StateFunc func(state service.RoundState, ev service.Event)

// Watch follows the server's event stream and re-reads the whole state after
// every event, until ctx is done or the stream breaks.
func (c *Client) Watch(ctx context.Context, fn StateFunc) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("lottery: dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, payload, errs := conn.ReadMessage()
		if errs != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errs
		}

		var msg service.EventMessage
		if errs = json.Unmarshal(payload, &msg); errs != nil {
			return fmt.Errorf("lottery: decode event: %w", errs)
		}

		switch msg.MsgType {
		case constant.EVENT_STATE:
			if msg.State != nil {
				fn(*msg.State, nil)
			}
		case constant.EVENT_ERROR:
			return errors.New(msg.Error)
		default:
			ev, errs := msg.DecodeEvent()
			if errs != nil {
				return errs
			}
			state, errs := c.State(ctx)
			if errs != nil {
				return errs
			}
			fn(state, ev)
		}
	}
}

// WatchRedis follows the events relayed on a redis channel.
func WatchRedis(ctx context.Context, rdb *redis.Client, channel string, fn func(service.Event)) error {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg service.EventMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				return fmt.Errorf("lottery: decode event: %w", err)
			}
			ev, err := msg.DecodeEvent()
			if err != nil {
				return err
			}
			if ev != nil {
				fn(ev)
			}
		}
	}
}
