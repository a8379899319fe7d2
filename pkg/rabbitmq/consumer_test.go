package rabbitmq

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name        string
		action      Action
		wantAck     bool
		wantNack    bool
		wantRequeue bool
	}{
		{name: "ack removes the message", action: Ack, wantAck: true},
		{name: "requeue nacks with requeue", action: Requeue, wantNack: true, wantRequeue: true},
		{name: "dead letter nacks without requeue", action: DeadLetter, wantNack: true, wantRequeue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAcknowledger{}
			d := amqp.Delivery{Acknowledger: ack, DeliveryTag: 1}

			err := settle(d, tt.action)
			require.NoError(t, err)

			require.Equal(t, tt.wantAck, ack.acked)
			require.Equal(t, tt.wantNack, ack.nacked)
			if tt.wantNack {
				require.Equal(t, tt.wantRequeue, ack.requeue)
			}
		})
	}
}
