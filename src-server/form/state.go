package form

import "devevents/src-server/model"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	// the last attempt finished; behaves like idle for a new submit
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseSettled:
		return "settled"
	default:
		return "idle"
	}
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "none"
	}
}

const (
	MessageSuccess       = "✅ Event created successfully!"
	MessageImageRequired = "⚠️ Please select an image."
	MessageFailedPrefix  = "❌ Failed: "
	MessageTransport     = "⚠️ Something went wrong."
)

type Snapshot struct {
	Draft   model.DraftEvent
	Phase   Phase
	Outcome Outcome
	Message string
}

// Loading reports whether a submission is in flight.
func (s Snapshot) Loading() bool {
	return s.Phase == PhaseSubmitting
}
