package broadcast

import (
	"context"
	"errors"
	"sync"
)

// fakePlatform records every call and returns deterministic ids.
type fakePlatform struct {
	mu    sync.Mutex
	calls []string

	streamURL string
	streamKey string

	active    []Broadcast
	playlists []Playlist

	failOn     map[string]error
	failFor    map[string]error // broadcast id -> TransitionBroadcast error
	streamSpec StreamSpec
	bcSpec     BroadcastSpec
	plSpec     *PlaylistSpec
	bound      [2]string
	items      [][2]string
	transition []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		streamURL: "rtmp://a.rtmp.youtube.com/live2",
		streamKey: "abcd-efgh-ijkl",
		failOn:    map[string]error{},
	}
}

func (f *fakePlatform) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.failOn[op]
}

func (f *fakePlatform) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakePlatform) InsertStream(_ context.Context, spec StreamSpec) (Stream, error) {
	if err := f.record("InsertStream"); err != nil {
		return Stream{}, err
	}
	f.streamSpec = spec
	return Stream{ID: "stream-1", IngestionAddress: f.streamURL, StreamName: f.streamKey}, nil
}

func (f *fakePlatform) InsertBroadcast(_ context.Context, spec BroadcastSpec) (Broadcast, error) {
	if err := f.record("InsertBroadcast"); err != nil {
		return Broadcast{}, err
	}
	f.bcSpec = spec
	return Broadcast{ID: "bc-1", Title: spec.Title, LifeCycleStatus: LifeCycleCreated}, nil
}

func (f *fakePlatform) BindBroadcast(_ context.Context, broadcastID, streamID string) error {
	if err := f.record("BindBroadcast"); err != nil {
		return err
	}
	f.bound = [2]string{broadcastID, streamID}
	return nil
}

func (f *fakePlatform) TransitionBroadcast(_ context.Context, broadcastID, status string) error {
	if err := f.record("TransitionBroadcast"); err != nil {
		return err
	}
	if err := f.failFor[broadcastID]; err != nil {
		return err
	}
	if status != LifeCycleComplete {
		return errors.New("unexpected transition " + status)
	}
	f.transition = append(f.transition, broadcastID)
	return nil
}

func (f *fakePlatform) ListActiveBroadcasts(_ context.Context, max int64) ([]Broadcast, error) {
	if err := f.record("ListActiveBroadcasts"); err != nil {
		return nil, err
	}
	if int64(len(f.active)) > max {
		return f.active[:max], nil
	}
	return f.active, nil
}

func (f *fakePlatform) ListPlaylists(_ context.Context, max int64) ([]Playlist, error) {
	if err := f.record("ListPlaylists"); err != nil {
		return nil, err
	}
	if int64(len(f.playlists)) > max {
		return f.playlists[:max], nil
	}
	return f.playlists, nil
}

func (f *fakePlatform) InsertPlaylist(_ context.Context, spec PlaylistSpec) (Playlist, error) {
	if err := f.record("InsertPlaylist"); err != nil {
		return Playlist{}, err
	}
	f.plSpec = &spec
	return Playlist{ID: "pl-new", Title: spec.Title}, nil
}

func (f *fakePlatform) InsertPlaylistItem(_ context.Context, playlistID, videoID string) error {
	if err := f.record("InsertPlaylistItem"); err != nil {
		return err
	}
	f.items = append(f.items, [2]string{playlistID, videoID})
	return nil
}

func (f *fakePlatform) ChannelID(context.Context) (string, error) {
	if err := f.record("ChannelID"); err != nil {
		return "", err
	}
	return "UC-test", nil
}

// provider returns a PlatformProvider for f that counts how often it was asked.
func (f *fakePlatform) provider(obtained *int) PlatformProvider {
	return PlatformFunc(func(context.Context) (Platform, error) {
		if obtained != nil {
			*obtained++
		}
		return f, nil
	})
}

func failingProvider(err error) PlatformProvider {
	return PlatformFunc(func(context.Context) (Platform, error) { return nil, err })
}
