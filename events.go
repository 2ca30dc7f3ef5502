package hueble

import (
	"time"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
)

// EventReason labels what triggered a state-changed dispatch.
type EventReason string

const (
	ReasonPoll         EventReason = "poll"
	ReasonNotification EventReason = "notification"
	ReasonWriteBack    EventReason = "write_back"
	ReasonDisconnect   EventReason = "disconnect"
	ReasonReconnect    EventReason = "reconnect"
	ReasonGaveUp       EventReason = "reconnect_exhausted"
)

// StateEvent records one state-changed dispatch. The session keeps a
// bounded history of these with overwrite-oldest semantics; producers never
// block and slow consumers lose the oldest events, mirroring how the radio
// itself treats notifications.
type StateEvent struct {
	Time   time.Time
	Reason EventReason

	// Attribute names the attribute that changed, empty for connection
	// state transitions.
	Attribute string
}

type eventLog struct {
	buffer mpmc.RichOverlappedRingBuffer[StateEvent]
}

func newEventLog(size uint32) *eventLog {
	return &eventLog{buffer: mpmc.NewOverlappedRingBuffer[StateEvent](size)}
}

func (e *eventLog) record(reason EventReason, attribute string) {
	//nolint:errcheck // overlapped ring never refuses an enqueue
	e.buffer.EnqueueM(StateEvent{
		Time:      time.Now(),
		Reason:    reason,
		Attribute: attribute,
	})
}

// drain removes and returns all buffered events, oldest first.
func (e *eventLog) drain() []StateEvent {
	var out []StateEvent
	for !e.buffer.IsEmpty() {
		ev, err := e.buffer.Dequeue()
		if err != nil {
			break
		}
		out = append(out, ev)
	}
	return out
}
