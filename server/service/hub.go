package service

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"sync"
	"time"
)

const (
	// DefaultHubBuffer is the number of events a subscriber may lag behind
	// before it is dropped.
	DefaultHubBuffer = 64

	writeWait = 10 * time.Second
)

var SlowSubscriberError = errors.New("subscriber too slow, dropped")

// Hub fans committed events out to websocket subscribers. A subscriber whose
// buffer is full is dropped instead of blocking the others.
type Hub struct {
	Conns map[string]chan []byte

	Mutex  sync.Mutex
	buffer int
	logger *zap.Logger
}

func NewHub(logger *zap.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultHubBuffer
	}
	return &Hub{
		Conns:  make(map[string]chan []byte),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a subscriber. The returned channel is closed when the
// subscriber is dropped or unsubscribed.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	id := uuid.New().String()
	send := make(chan []byte, h.buffer)

	h.Mutex.Lock()
	h.Conns[id] = send
	h.Mutex.Unlock()

	return send, func() { h.remove(id, send) }
}

// Count returns the number of live subscribers.
func (h *Hub) Count() int {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	return len(h.Conns)
}

func (h *Hub) remove(id string, send chan []byte) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if h.Conns[id] == send {
		delete(h.Conns, id)
		close(send)
	}
}

// Publish implements Publisher.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	msg, err := NewEventMessage(ev)
	if err != nil {
		return err
	}
	h.Broadcast(msg.ToJsonStr())
	return nil
}

// Broadcast queues payload for every subscriber without blocking.
func (h *Hub) Broadcast(payload []byte) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	for id, send := range h.Conns {
		select {
		case send <- payload:
		default:
			delete(h.Conns, id)
			close(send)
			h.logger.Warn("dropping slow subscriber", zap.String("subscriber", id))
		}
	}
}

// ConnOnline streams events to conn until ctx is done, the subscriber is
// dropped or a write fails. The first message is the state returned by
// snapshot, taken after the subscription so no event is missed.
func (h *Hub) ConnOnline(ctx context.Context, conn *websocket.Conn, snapshot func() RoundState) error {
	send, unsubscribe := h.Subscribe()
	defer unsubscribe()

	if err := writeMessage(conn, NewStateMessage(snapshot()).ToJsonStr()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-send:
			if !ok {
				_ = writeMessage(conn, NewErrorMessage(SlowSubscriberError.Error()).ToJsonStr())
				return SlowSubscriberError
			}
			if err := writeMessage(conn, payload); err != nil {
				return err
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, payload []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}
