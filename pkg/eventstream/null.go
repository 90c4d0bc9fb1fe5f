package eventstream

// NullStream doesn't publish events anywhere and is mostly for
// testing or non-server CLI cmdlets.
type NullStream struct{}

// NewNullStreamer hands back a null stream instance that discards
// everything.
func NewNullStreamer() *NullStream {
	return new(NullStream)
}

// PublishError discards all errors.
func (ns *NullStream) PublishError(_ error) {}

// PublishLogLine discards all log lines.
func (ns *NullStream) PublishLogLine(_ string) {}

// PublishStateChange discards all transitions.
func (ns *NullStream) PublishStateChange(_, _, _ string) {}

// PublishDetection discards all detections.
func (ns *NullStream) PublishDetection(_, _ string) {}

// PublishManeuver discards all maneuvers.
func (ns *NullStream) PublishManeuver(_, _ string) {}
