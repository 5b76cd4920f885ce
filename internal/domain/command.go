package domain

// Reserved control verbs. Any other non-empty action string is treated as a
// message to announce alongside the alert tone.
const (
	ActionOn  = "on"
	ActionOff = "off"
)

// LoopForever as a Frequency value plays the tone until an explicit stop.
const LoopForever = -1

type ConnectionType string

const (
	ConnectionAny      ConnectionType = "any"
	ConnectionWired    ConnectionType = "wired"
	ConnectionCellular ConnectionType = "cellular"
)

// Event names exchanged with the controller backend over the control session.
const (
	EventRegister      = "siren-register"
	EventAckOn         = "siren-ack-on"
	EventAckOff        = "siren-ack-off"
	EventControlSingle = "siren-control-single"
	EventControlMulti  = "siren-control-multi"
)

// Command is a decoded control event. Single-target commands carry TargetID;
// multi-target commands carry TargetIDs instead.
type Command struct {
	Action         string         `json:"action"`
	TargetID       string         `json:"targetId,omitempty"`
	TargetIDs      []string       `json:"targetIds,omitempty"`
	AlertType      string         `json:"alertType,omitempty"`
	GapSeconds     int            `json:"gapSeconds,omitempty"`
	Language       string         `json:"language,omitempty"`
	Frequency      int            `json:"frequency,omitempty"`
	ConnectionType ConnectionType `json:"connectionType,omitempty"`
}

// ApplyDefaults fills absent fields with the protocol defaults.
func (c *Command) ApplyDefaults() {
	if c.AlertType == "" {
		c.AlertType = "warning"
	}
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Frequency == 0 {
		c.Frequency = 1
	}
	if c.GapSeconds < 0 {
		c.GapSeconds = 0
	}
	if c.ConnectionType == "" {
		c.ConnectionType = ConnectionAny
	}
}

// Targets reports whether the command addresses the given device, in either
// the single- or multi-target form.
func (c *Command) Targets(deviceID string) bool {
	if c.TargetID != "" {
		return c.TargetID == deviceID
	}
	for _, id := range c.TargetIDs {
		if id == deviceID {
			return true
		}
	}
	return false
}

// Segment roles in a merged playback stream.
const (
	SegmentAlarm   = "alarm"
	SegmentPrimary = "message-primary-language"
	SegmentTarget  = "message-target-language"
)

// AudioSegment is one input to a merge. File-backed segments carry Path and
// are read at merge time; in-memory segments carry WAV bytes.
type AudioSegment struct {
	Role string
	Path string
	WAV  []byte
}
