package event

type Event interface {
	Op() string
}

// Metadata addresses an event. An empty To broadcasts to every subscriber,
// otherwise delivery is restricted to sessions authenticated as that user.
type Metadata struct {
	To string `json:"to,omitempty"`
}

type EventRequest struct {
	Op       string   `json:"o"`
	Data     any      `json:"d"`
	Metadata Metadata `json:"m"`
}

// EventResponse is the frame written to a subscriber. Seq counts per
// subscriber from zero with no gaps, so clients can assert ordering.
type EventResponse struct {
	Op   string `json:"o"`
	Seq  int64  `json:"s"`
	Data any    `json:"d"`
}

func New(ev Event, metadata Metadata) *EventRequest {
	return &EventRequest{
		Op:       ev.Op(),
		Data:     ev,
		Metadata: metadata,
	}
}

func Format(event *EventRequest, seq int64) *EventResponse {
	return &EventResponse{
		Op:   event.Op,
		Seq:  seq,
		Data: event.Data,
	}
}
