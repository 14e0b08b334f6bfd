package diagnostics

import "time"

// EventType names a telemetry event.
type EventType string

const (
	EventAssetLoadStart        EventType = "asset_load_start"
	EventAssetLoadSuccess      EventType = "asset_load_success"
	EventAssetLoadFailed       EventType = "asset_load_failed"
	EventFusionModeChanged     EventType = "fusion_mode_changed"
	EventRepresentationChanged EventType = "representation_changed"
)

// EventTypes lists every known event type.
var EventTypes = []EventType{
	EventAssetLoadStart,
	EventAssetLoadSuccess,
	EventAssetLoadFailed,
	EventFusionModeChanged,
	EventRepresentationChanged,
}

// Event is a single telemetry record. Optional fields are omitted when empty.
type Event struct {
	ID         string    `json:"id,omitempty"`
	Event      EventType `json:"event"`
	Timestamp  time.Time `json:"timestamp"`
	SceneID    string    `json:"sceneId"`
	Mode       string    `json:"mode,omitempty"`
	DurationMs *int64    `json:"durationMs,omitempty"`
	ErrorCode  string    `json:"errorCode,omitempty"`
}

// timestampLayout is RFC3339 with fixed millisecond precision so stored
// timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TimestampString renders the timestamp as RFC3339 in UTC.
func (e Event) TimestampString() string {
	return e.Timestamp.UTC().Format(timestampLayout)
}

func durationMs(d time.Duration) *int64 {
	ms := max(d.Milliseconds(), 0)
	return &ms
}
