package service

import (
	"encoding/json"
	"game-lottery/server/constant"
	"game-lottery/server/model"
	"github.com/google/uuid"
	"strings"
)

// RoundState is the authoritative state of the running round.
type RoundState struct {
	RoundNumber  int       `json:"roundNumber"`  // current round, starts at 1
	Organizer    string    `json:"organizer"`    // fixed at deployment
	Participants []string  `json:"participants"` // insertion order, unique
	Balance      model.Wei `json:"balance"`      // sum of accepted contributions
}

func (s *RoundState) indexOf(address string) int {
	for i, participant := range s.Participants {
		if participant == address {
			return i
		}
	}
	return -1
}

// Event is a change notification fired after a committed mutation.
type Event interface {
	EventType() int
	Round() int
}

// NewParticipation is fired once per accepted contribution.
type NewParticipation struct {
	ParticipantAddress string    `json:"participantAddress"`
	ParticipationValue model.Wei `json:"participationValue"`
	RoundNumber        int       `json:"roundNumber"`
	TxID               string    `json:"txId"`
	Timestamp          int64     `json:"timestamp"`
}

func (NewParticipation) EventType() int { return constant.EVENT_NEW_PARTICIPATION }

func (e NewParticipation) Round() int { return e.RoundNumber }

// WinnerPicked is fired once per winner pick. RoundNumber is the round that
// was closed.
type WinnerPicked struct {
	WinnerAddress string    `json:"winnerAddress"`
	Prize         model.Wei `json:"prize"`
	RoundNumber   int       `json:"roundNumber"`
	TxID          string    `json:"txId"`
	Timestamp     int64     `json:"timestamp"`
}

func (WinnerPicked) EventType() int { return constant.EVENT_WINNER_PICKED }

func (e WinnerPicked) Round() int { return e.RoundNumber }

type Message struct {
	MsgType int    `json:"msgType"` // event type
	MsgId   string `json:"msgId"`   // uuid without dashes
}

func newMessage(msgType int) Message {
	return Message{MsgType: msgType, MsgId: strings.ReplaceAll(uuid.New().String(), "-", "")}
}

// EventMessage is the envelope pushed to websocket and redis subscribers.
type EventMessage struct {
	Message
	Event json.RawMessage `json:"event,omitempty"`
	State *RoundState     `json:"state,omitempty"`
	Error string          `json:"error,omitempty"`
}

func (m *EventMessage) ToJsonStr() []byte {
	marshal, _ := json.Marshal(m)
	return marshal
}

// NewEventMessage wraps ev into an envelope.
func NewEventMessage(ev Event) (*EventMessage, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &EventMessage{Message: newMessage(ev.EventType()), Event: raw}, nil
}

// NewStateMessage wraps a state snapshot into an envelope.
func NewStateMessage(state RoundState) *EventMessage {
	return &EventMessage{Message: newMessage(constant.EVENT_STATE), State: &state}
}

// NewErrorMessage wraps an error text into an envelope.
func NewErrorMessage(msg string) *EventMessage {
	return &EventMessage{Message: newMessage(constant.EVENT_ERROR), Error: msg}
}

// DecodeEvent returns the typed event held by m, or nil for state and error
// envelopes.
func (m *EventMessage) DecodeEvent() (Event, error) {
	switch m.MsgType {
	case constant.EVENT_NEW_PARTICIPATION:
		var ev NewParticipation
		if err := json.Unmarshal(m.Event, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case constant.EVENT_WINNER_PICKED:
		var ev WinnerPicked
		if err := json.Unmarshal(m.Event, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	}
	return nil, nil
}
