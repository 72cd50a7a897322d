package broadcast

import "context"

// Platform is the set of video platform calls the lifecycle operations make.
// Implementations return the platform's own errors; the Service wraps them.
type Platform interface {
	InsertStream(ctx context.Context, spec StreamSpec) (Stream, error)
	InsertBroadcast(ctx context.Context, spec BroadcastSpec) (Broadcast, error)
	BindBroadcast(ctx context.Context, broadcastID, streamID string) error
	TransitionBroadcast(ctx context.Context, broadcastID, status string) error

	// ListActiveBroadcasts returns at most max broadcasts whose status is active.
	ListActiveBroadcasts(ctx context.Context, max int64) ([]Broadcast, error)

	// ListPlaylists returns at most max of the authenticated channel's playlists.
	ListPlaylists(ctx context.Context, max int64) ([]Playlist, error)
	InsertPlaylist(ctx context.Context, spec PlaylistSpec) (Playlist, error)
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error

	// ChannelID returns the authenticated channel's id.
	ChannelID(ctx context.Context) (string, error)
}

// PlatformProvider hands out an authenticated Platform, building it on first use.
type PlatformProvider interface {
	Platform(ctx context.Context) (Platform, error)
}

// PlatformFunc adapts a function to PlatformProvider.
type PlatformFunc func(ctx context.Context) (Platform, error)

// Platform implements PlatformProvider.
func (f PlatformFunc) Platform(ctx context.Context) (Platform, error) { return f(ctx) }
