package booking

import "fmt"

// Status is the lifecycle state of a booking. The zero value is not a valid
// status; the only usable values are the package-level Status* variables.
type Status struct {
	name string
}

var (
	StatusPending   = Status{"pending"}
	StatusAccepted  = Status{"accepted"}
	StatusRejected  = Status{"rejected"}
	StatusCompleted = Status{"completed"}
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusAccepted, StatusRejected, StatusCompleted}

// Action is an event that drives a status transition.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	// ActionRequest and ActionRate are not transitions; they name booking
	// creation and feedback submission in authorization errors.
	ActionRequest Action = "request"
	ActionRate    Action = "rate"
)

type transitionKey struct {
	from   Status
	action Action
}

// transitions defines the state machine for booking status transitions.
var transitions = map[transitionKey]Status{
	{StatusPending, ActionAccept}:    StatusAccepted,
	{StatusPending, ActionReject}:    StatusRejected,
	{StatusAccepted, ActionComplete}: StatusCompleted,
}

// Next returns the status reached by applying action, or an
// IllegalTransitionError if the pair is not in the table.
func (s Status) Next(action Action) (Status, error) {
	to, ok := transitions[transitionKey{s, action}]
	if !ok {
		return Status{}, &IllegalTransitionError{From: s, Action: action}
	}
	return to, nil
}

// Allows reports whether action is defined for this status.
func (s Status) Allows(action Action) bool {
	_, ok := transitions[transitionKey{s, action}]
	return ok
}

// IsValid returns true if the status is one of the four lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	for k := range transitions {
		if k.from == s {
			return false
		}
	}
	return true
}

// String returns the string representation of the status.
func (s Status) String() string {
	if s.name == "" {
		return "unknown"
	}
	return s.name
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid booking status")
	}
	return []byte(s.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if st.name == s {
			return st, nil
		}
	}
	return Status{}, fmt.Errorf("invalid booking status: %s", s)
}
