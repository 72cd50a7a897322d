// Package youtube implements broadcast.Platform on the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"livestream-controller/internal/broadcast"
)

// ErrNoChannel is returned when the authenticated account owns no channel.
var ErrNoChannel = errors.New("authenticated account has no channel")

// Client is a thin handle on the YouTube service.
type Client struct {
	svc *yt.Service
}

var _ broadcast.Platform = (*Client)(nil)

// NewClient builds a Client. Authentication comes from opts, normally
// option.WithTokenSource.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// InsertStream implements broadcast.Platform.
func (c *Client) InsertStream(ctx context.Context, spec broadcast.StreamSpec) (broadcast.Stream, error) {
	resp, err := c.svc.LiveStreams.Insert([]string{"snippet", "cdn", "contentDetails"}, &yt.LiveStream{
		Snippet: &yt.LiveStreamSnippet{Title: spec.Title},
		Cdn: &yt.CdnSettings{
			FrameRate:     spec.FrameRate,
			Resolution:    spec.Resolution,
			IngestionType: spec.IngestionType,
		},
		ContentDetails: &yt.LiveStreamContentDetails{
			IsReusable:      spec.Reusable,
			ForceSendFields: []string{"IsReusable"},
		},
	}).Context(ctx).Do()
	if err != nil {
		return broadcast.Stream{}, err
	}

	s := broadcast.Stream{ID: resp.Id}
	if resp.Cdn != nil && resp.Cdn.IngestionInfo != nil {
		s.IngestionAddress = resp.Cdn.IngestionInfo.IngestionAddress
		s.StreamName = resp.Cdn.IngestionInfo.StreamName
	}
	return s, nil
}

// InsertBroadcast implements broadcast.Platform.
func (c *Client) InsertBroadcast(ctx context.Context, spec broadcast.BroadcastSpec) (broadcast.Broadcast, error) {
	resp, err := c.svc.LiveBroadcasts.Insert([]string{"snippet", "contentDetails", "status"}, &yt.LiveBroadcast{
		Snippet: &yt.LiveBroadcastSnippet{
			Title:              spec.Title,
			Description:        spec.Description,
			ScheduledStartTime: spec.ScheduledStart.UTC().Format(time.RFC3339),
		},
		Status: &yt.LiveBroadcastStatus{
			PrivacyStatus:           string(spec.PrivacyStatus),
			SelfDeclaredMadeForKids: spec.MadeForKids,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
		ContentDetails: &yt.LiveBroadcastContentDetails{
			EnableAutoStart:   spec.EnableAutoStart,
			EnableAutoStop:    spec.EnableAutoStop,
			LatencyPreference: spec.LatencyPreference,
			MonitorStream: &yt.MonitorStreamInfo{
				EnableMonitorStream: googleapi.Bool(spec.EnableMonitorStream),
			},
			ForceSendFields: []string{"EnableAutoStart", "EnableAutoStop"},
		},
	}).Context(ctx).Do()
	if err != nil {
		return broadcast.Broadcast{}, err
	}
	return toBroadcast(resp), nil
}

// BindBroadcast implements broadcast.Platform.
func (c *Client) BindBroadcast(ctx context.Context, broadcastID, streamID string) error {
	_, err := c.svc.LiveBroadcasts.Bind(broadcastID, []string{"id", "contentDetails"}).
		StreamId(streamID).
		Context(ctx).
		Do()
	return err
}

// TransitionBroadcast implements broadcast.Platform.
func (c *Client) TransitionBroadcast(ctx context.Context, broadcastID, status string) error {
	_, err := c.svc.LiveBroadcasts.Transition(status, broadcastID, []string{"status"}).Context(ctx).Do()
	return err
}

// ListActiveBroadcasts implements broadcast.Platform.
func (c *Client) ListActiveBroadcasts(ctx context.Context, max int64) ([]broadcast.Broadcast, error) {
	resp, err := c.svc.LiveBroadcasts.List([]string{"id", "snippet", "status"}).
		BroadcastStatus("active").
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make([]broadcast.Broadcast, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, toBroadcast(item))
	}
	return out, nil
}

// ListPlaylists implements broadcast.Platform.
func (c *Client) ListPlaylists(ctx context.Context, max int64) ([]broadcast.Playlist, error) {
	resp, err := c.svc.Playlists.List([]string{"id", "snippet"}).
		Mine(true).
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	out := make([]broadcast.Playlist, 0, len(resp.Items))
	for _, item := range resp.Items {
		p := broadcast.Playlist{ID: item.Id}
		if item.Snippet != nil {
			p.Title = item.Snippet.Title
		}
		out = append(out, p)
	}
	return out, nil
}

// InsertPlaylist implements broadcast.Platform.
func (c *Client) InsertPlaylist(ctx context.Context, spec broadcast.PlaylistSpec) (broadcast.Playlist, error) {
	resp, err := c.svc.Playlists.Insert([]string{"snippet", "status"}, &yt.Playlist{
		Snippet: &yt.PlaylistSnippet{
			Title:       spec.Title,
			Description: spec.Description,
		},
		Status: &yt.PlaylistStatus{PrivacyStatus: string(spec.PrivacyStatus)},
	}).Context(ctx).Do()
	if err != nil {
		return broadcast.Playlist{}, err
	}

	p := broadcast.Playlist{ID: resp.Id}
	if resp.Snippet != nil {
		p.Title = resp.Snippet.Title
	}
	return p, nil
}

// InsertPlaylistItem implements broadcast.Platform.
func (c *Client) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	_, err := c.svc.PlaylistItems.Insert([]string{"snippet"}, &yt.PlaylistItem{
		Snippet: &yt.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &yt.ResourceId{Kind: "youtube#video", VideoId: videoID},
		},
	}).Context(ctx).Do()
	return err
}

// ChannelID implements broadcast.Platform.
func (c *Client) ChannelID(ctx context.Context) (string, error) {
	resp, err := c.svc.Channels.List([]string{"id"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", ErrNoChannel
	}
	return resp.Items[0].Id, nil
}

func toBroadcast(item *yt.LiveBroadcast) broadcast.Broadcast {
	b := broadcast.Broadcast{ID: item.Id}
	if item.Snippet != nil {
		b.Title = item.Snippet.Title
	}
	if item.Status != nil {
		b.LifeCycleStatus = item.Status.LifeCycleStatus
	}
	return b
}
