package world

type EventKind string

const (
	EventCalendarReminder EventKind = "calendar_reminder"
	EventCalendarMissed   EventKind = "calendar_missed"
	EventIncursion        EventKind = "incursion"
	EventMovement         EventKind = "movement"
	EventInteraction      EventKind = "interaction"
	EventUserAction       EventKind = "user_action"
)

// KnownEventKind reports whether k is one of the closed set of event kinds.
// Law tables switch exhaustively over this set; adding a kind is a
// compile-visible change here plus every switch.
func KnownEventKind(k EventKind) bool {
	switch k {
	case EventCalendarReminder, EventCalendarMissed, EventIncursion,
		EventMovement, EventInteraction, EventUserAction:
		return true
	}
	return false
}

// EventPayload carries the numeric character of an event. DriveImpacts maps
// drive names to effects in [-1,1]; the remaining axes are the inputs the
// autonomy laws read.
type EventPayload struct {
	Magnitude    float64            `json:"magnitude"`
	Valence      float64            `json:"valence"`
	Conflict     float64            `json:"conflict"`
	Novelty      float64            `json:"novelty"`
	Workload     bool               `json:"workload,omitempty"`
	DriveImpacts map[string]float64 `json:"drive_impacts,omitempty"`
	Topic        string             `json:"topic,omitempty"`
	Location     string             `json:"location,omitempty"`
	TimeOfDay    Phase              `json:"time_of_day,omitempty"`
	Description  string             `json:"description,omitempty"`
	ItemID       string             `json:"item_id,omitempty"`
	Text         string             `json:"text,omitempty"`
}

// Event is immutable once created and is the unit of information flow
// between the engine, the autonomy laws and the eligibility gate.
type Event struct {
	ID        string       `json:"id"`
	WorldID   string       `json:"world_id"`
	Tick      int64        `json:"tick"`
	Kind      EventKind    `json:"kind"`
	Source    string       `json:"source,omitempty"`
	Target    string       `json:"target,omitempty"`
	Payload   EventPayload `json:"payload"`
	Processed bool         `json:"processed"`
}

// Involves reports whether the agent is either endpoint of the event.
func (e Event) Involves(agentID string) bool {
	return e.Source == agentID || e.Target == agentID
}
