package broadcast

import "time"

// Action is the operation requested by a caller.
type Action string

const (
	ActionCreate Action = "create"
	ActionEnd    Action = "end"
)

// Valid reports whether a is one of the supported actions.
func (a Action) Valid() bool {
	return a == ActionCreate || a == ActionEnd
}

// PrivacyStatus is the visibility of a broadcast and its device playlist.
type PrivacyStatus string

const (
	PrivacyPublic   PrivacyStatus = "public"
	PrivacyPrivate  PrivacyStatus = "private"
	PrivacyUnlisted PrivacyStatus = "unlisted"
)

// Valid reports whether p is accepted by the platform.
func (p PrivacyStatus) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyUnlisted:
		return true
	}
	return false
}

// Defaults applied to fields missing from an ActionRequest.
const (
	DefaultCamName       = "UnknownCam"
	DefaultWorkflowName  = "UnknownWorkflow"
	DefaultPrivacyStatus = PrivacyPrivate
)

// ActionRequest is the logical payload of one invocation.
type ActionRequest struct {
	Action        Action        `json:"action"`
	CamName       string        `json:"cam_name"`
	WorkflowName  string        `json:"workflow_name"`
	PrivacyStatus PrivacyStatus `json:"privacy_status"`
}

func (r *ActionRequest) applyDefaults() {
	if r.CamName == "" {
		r.CamName = DefaultCamName
	}
	if r.WorkflowName == "" {
		r.WorkflowName = DefaultWorkflowName
	}
	if r.PrivacyStatus == "" {
		r.PrivacyStatus = DefaultPrivacyStatus
	}
}

// CreateResult describes a broadcast created and bound by CreateBroadcastAndBindStream.
type CreateResult struct {
	BroadcastID       string        `json:"broadcast_id"`
	VideoID           string        `json:"video_id"`
	StreamID          string        `json:"stream_id"`
	PlaylistID        string        `json:"playlist_id"`
	Title             string        `json:"title"`
	PrivacyStatus     PrivacyStatus `json:"privacy_status"`
	FFmpegURL         string        `json:"ffmpeg_url"`
	VideoURL          string        `json:"video_url"`
	PlaylistAddStatus string        `json:"playlist_add_status"`
}

// Lifecycle statuses reported by the platform for a broadcast.
const (
	LifeCycleCreated  = "created"
	LifeCycleReady    = "ready"
	LifeCycleTesting  = "testing"
	LifeCycleLive     = "live"
	LifeCycleComplete = "complete"
)

// Stream is an ingest endpoint.
type Stream struct {
	ID               string
	IngestionAddress string
	StreamName       string
}

// IngestURL is the address an encoder publishes to: "{address}/{key}".
func (s Stream) IngestURL() string {
	return s.IngestionAddress + "/" + s.StreamName
}

// StreamSpec describes an ingest stream to create.
type StreamSpec struct {
	Title         string
	FrameRate     string
	Resolution    string
	IngestionType string
	Reusable      bool
}

// Broadcast is a scheduled or live video event. Its id doubles as the video id.
type Broadcast struct {
	ID              string
	Title           string
	LifeCycleStatus string
}

// BroadcastSpec describes a broadcast to schedule.
type BroadcastSpec struct {
	Title               string
	Description         string
	ScheduledStart      time.Time
	PrivacyStatus       PrivacyStatus
	MadeForKids         bool
	EnableAutoStart     bool
	EnableAutoStop      bool
	LatencyPreference   string
	EnableMonitorStream bool
}

// Playlist is a channel playlist.
type Playlist struct {
	ID    string
	Title string
}

// PlaylistSpec describes a playlist to create.
type PlaylistSpec struct {
	Title         string
	Description   string
	PrivacyStatus PrivacyStatus
}
