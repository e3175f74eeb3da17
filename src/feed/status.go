package feed

type State = string

const (
	StateDisconnected State = "DISCONNECTED"
	StateConnecting   State = "CONNECTING"
	StateConnected    State = "CONNECTED"
	StateReady        State = "READY"
	StateError        State = "ERROR"
)

// Status is the connection status shown to observers. Message is only
// set for StateError.
type Status struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`
}

var (
	StatusDisconnected = Status{State: StateDisconnected}
	StatusConnecting   = Status{State: StateConnecting}
	StatusConnected    = Status{State: StateConnected}
	StatusReady        = Status{State: StateReady}
)

func ErrorStatus(message string) Status {
	return Status{State: StateError, Message: message}
}

func (s Status) String() string {
	if s.Message == "" {
		return s.State
	}
	return s.State + ": " + s.Message
}
