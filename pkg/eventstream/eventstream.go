package eventstream

import (
	"encoding/json"
	"time"
)

func (es *EventStream) header(t EventType) Header {
	return Header{Type: t, Run: es.run, Time: es.now()}
}

func (es *EventStream) marshalAndPublish(e any) {
	bytes, err := json.Marshal(e)
	if err != nil {
		es.l.Warn("Error marshaling event", "error", err)
		return
	}
	es.publish(bytes)
}

// PublishError pushes an error out into the event stream.
func (es *EventStream) PublishError(err error) {
	es.marshalAndPublish(EventError{
		Header: es.header(EventTypeError),
		Error:  err.Error(),
	})
}

// PublishLogLine pushes a status message into the event stream.
func (es *EventStream) PublishLogLine(msg string) {
	es.marshalAndPublish(EventLogLine{
		Header:  es.header(EventTypeLogLine),
		Message: msg,
	})
}

// PublishStateChange pushes a drive state transition.  The most
// recent one is also replayed to every new subscriber so that a
// freshly opened page knows what the vehicle is doing.
func (es *EventStream) PublishStateChange(from, to, side string) {
	e := EventStateChange{
		Header: es.header(EventTypeStateChange),
		From:   from,
		To:     to,
		Side:   side,
	}

	bytes, err := json.Marshal(e)
	if err != nil {
		es.l.Warn("Error marshaling event", "error", err)
		return
	}

	es.lastMutex.Lock()
	es.lastState = bytes
	es.lastMutex.Unlock()
	es.publish(bytes)
}

// PublishDetection pushes a parking spot sighting.
func (es *EventStream) PublishDetection(color, side string) {
	es.marshalAndPublish(EventDetection{
		Header: es.header(EventTypeDetection),
		Color:  color,
		Side:   side,
	})
}

// PublishManeuver pushes the start of a maneuver replay.
func (es *EventStream) PublishManeuver(maneuver, id string) {
	es.marshalAndPublish(EventManeuver{
		Header:   es.header(EventTypeManeuver),
		Maneuver: maneuver,
		ID:       id,
	})
}

func (es *EventStream) now() time.Time {
	return es.clk.Now().UTC()
}
