package checkout

// EventType tags the component events delivered to the host callback.
type EventType string

const (
	EventStateChanged  EventType = "state_changed"
	EventSubmit        EventType = "submit"
	EventActionDetails EventType = "action_details"
	EventError         EventType = "error"
)

// ComponentEvent is the uniform envelope every delegate emission is wrapped
// in before reaching the host callback, regardless of which payment method or
// action type produced it.
type ComponentEvent struct {
	Type    EventType
	State   *ComponentState
	Details *ActionComponentData
	Err     error
}

// NewStateChangedEvent wraps a component state emission.
func NewStateChangedEvent(state ComponentState) ComponentEvent {
	return ComponentEvent{Type: EventStateChanged, State: &state}
}

// NewSubmitEvent wraps a host-initiated submission of the given state.
func NewSubmitEvent(state ComponentState) ComponentEvent {
	return ComponentEvent{Type: EventSubmit, State: &state}
}

// NewActionDetailsEvent wraps the completion payload of a secondary action.
func NewActionDetailsEvent(details ActionComponentData) ComponentEvent {
	return ComponentEvent{Type: EventActionDetails, Details: &details}
}

// NewErrorEvent wraps a delegate error.
func NewErrorEvent(err error) ComponentEvent {
	return ComponentEvent{Type: EventError, Err: err}
}
