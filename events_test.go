package hueble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventLogDrainsInOrder(t *testing.T) {
	log := newEventLog(8)
	log.record(ReasonPoll, "power")
	log.record(ReasonNotification, "brightness")
	log.record(ReasonDisconnect, "")

	events := log.drain()
	require.Len(t, events, 3)
	assert.Equal(t, ReasonPoll, events[0].Reason)
	assert.Equal(t, "power", events[0].Attribute)
	assert.Equal(t, ReasonNotification, events[1].Reason)
	assert.Equal(t, ReasonDisconnect, events[2].Reason)
	assert.False(t, events[0].Time.IsZero())

	assert.Empty(t, log.drain(), "drain empties the buffer")
}

func TestEventLogOverwritesOldest(t *testing.T) {
	log := newEventLog(4)
	for i := 0; i < 16; i++ {
		log.record(ReasonPoll, "power")
	}
	log.record(ReasonGaveUp, "")

	events := log.drain()
	require.NotEmpty(t, events)
	assert.LessOrEqual(t, len(events), 4, "history is bounded")
	assert.Equal(t, ReasonGaveUp, events[len(events)-1].Reason, "newest event survives")
}
