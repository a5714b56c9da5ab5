package events

// NoopPublisher discards events. Used when NATS is not configured and in
// tests that do not assert on events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(string, OrderEvent) error { return nil }
func (NoopPublisher) Close()                           {}

// RecordingPublisher captures published events for test assertions.
type RecordingPublisher struct {
	Events []OrderEvent

	// Subjects holds the subject of each published event, index-aligned
	// with Events.
	Subjects []string
}

func (r *RecordingPublisher) Publish(subject string, event OrderEvent) error {
	r.Subjects = append(r.Subjects, subject)
	r.Events = append(r.Events, event)
	return nil
}

func (r *RecordingPublisher) Close() {}
