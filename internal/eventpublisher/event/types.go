package event

type (
	EventType int

	Event struct {
		Message interface{}
		Err     error
	}

	EventChannel  chan Event
	EventWChannel chan<- Event
)

const (
	RecordCreated EventType = iota
	RecordDeleted
)

func (t EventType) String() string {
	switch t {
	case RecordCreated:
		return "created"
	case RecordDeleted:
		return "deleted"
	}
	return "unknown"
}
