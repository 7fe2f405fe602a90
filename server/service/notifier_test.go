package service

import (
	"context"
	"errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"testing"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Event) error {
	return errors.New("unreachable")
}

func TestNotifier_DeliversInOrder(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	notifier := NewNotifier(zaptest.NewLogger(t), first, failingPublisher{})
	notifier.Register(second)

	for i := 1; i <= 50; i++ {
		notifier.Notify(NewParticipation{RoundNumber: i})
	}
	notifier.Close()

	for _, r := range []*recorder{first, second} {
		events := r.Events()
		require.Len(t, events, 50)
		for i, ev := range events {
			require.Equal(t, i+1, ev.Round())
		}
	}
}

func TestNotifier_DropsAfterClose(t *testing.T) {
	r := &recorder{}
	notifier := NewNotifier(zaptest.NewLogger(t), r)
	notifier.Close()
	notifier.Close()

	notifier.Notify(WinnerPicked{RoundNumber: 1})
	require.Empty(t, r.Events())
}
