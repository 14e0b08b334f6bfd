package sceneasset

// EventKind discriminates LoadEvent variants.
type EventKind string

const (
	EventLoading EventKind = "loading"
	EventReady   EventKind = "ready"
	EventFailed  EventKind = "failed"
)

// Terminal reports whether the kind ends a load attempt.
func (k EventKind) Terminal() bool {
	return k == EventReady || k == EventFailed
}

// ParsedScenePayload is the decoded primary asset handed to the renderer.
// Data holds a string for ply, []byte for splat, and the decoded JSON value
// for gltf.
type ParsedScenePayload struct {
	SceneID   string `json:"sceneId"`
	AssetURL  string `json:"assetUrl"`
	Format    Format `json:"format"`
	SizeBytes int64  `json:"sizeBytes"`
	Data      any    `json:"-"`
}

// LoadEvent is one step of a load attempt. Payload is set only for ready
// events and Err only for failed events.
type LoadEvent struct {
	Kind    EventKind
	Payload *ParsedScenePayload
	Err     LoadError
}

func loadingEvent() LoadEvent {
	return LoadEvent{Kind: EventLoading}
}

func readyEvent(payload *ParsedScenePayload) LoadEvent {
	return LoadEvent{Kind: EventReady, Payload: payload}
}

func failedEvent(err LoadError) LoadEvent {
	return LoadEvent{Kind: EventFailed, Err: err}
}
