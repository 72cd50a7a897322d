package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultRegistrationDelay is how long to wait after binding before the
	// playlist calls, giving the platform time to register the new video.
	DefaultRegistrationDelay = 5 * time.Second

	// ListPageSize bounds every list call. Results beyond it are not considered.
	ListPageSize int64 = 50

	scheduleLead = 2 * time.Minute
)

// Service runs the broadcast lifecycle operations against the platform given
// by its PlatformProvider. One Service is built per process.
type Service struct {
	platforms   PlatformProvider
	log         *slog.Logger
	now         func() time.Time
	delay       time.Duration
	description string
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides time.Now for titles and scheduled start times.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRegistrationDelay sets the pause between binding and the playlist calls.
// Zero disables it; negative values are ignored.
func WithRegistrationDelay(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithDescriptionTemplate sets the broadcast description template.
// {workflow_name} and {cam_name} are substituted. Empty keeps the default.
func WithDescriptionTemplate(tmpl string) ServiceOption {
	return func(s *Service) {
		if tmpl != "" {
			s.description = tmpl
		}
	}
}

// NewService returns a Service that obtains its Platform from platforms.
func NewService(platforms PlatformProvider, opts ...ServiceOption) *Service {
	s := &Service{
		platforms:   platforms,
		log:         slog.New(slog.DiscardHandler),
		now:         time.Now,
		delay:       DefaultRegistrationDelay,
		description: DefaultDescriptionTemplate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBroadcastAndBindStream creates a fresh ingest stream, schedules a
// broadcast two minutes out, binds the two, and files the broadcast into the
// device playlist (creating the playlist if none matches workflowName).
//
// Adding to the playlist is best-effort and reported in PlaylistAddStatus.
// Any other platform failure aborts the operation; resources created before
// the failure are left in place.
func (s *Service) CreateBroadcastAndBindStream(ctx context.Context, camName, workflowName string, privacy PrivacyStatus) (*CreateResult, error) {
	if !privacy.Valid() {
		return nil, &ValidationError{Field: "privacy_status", Value: string(privacy)}
	}

	p, err := s.platforms.Platform(ctx)
	if err != nil {
		return nil, err
	}

	log := s.log.With(slog.String("workflow_name", workflowName), slog.String("cam_name", camName))
	log.Info("creating ingest stream")

	stream, err := p.InsertStream(ctx, StreamSpec{
		Title:         StreamTitle(workflowName),
		FrameRate:     "variable",
		Resolution:    "variable",
		IngestionType: "rtmp",
		Reusable:      false,
	})
	if err != nil {
		return nil, upstream("create stream", err)
	}

	now := s.now().UTC()
	title := BroadcastTitle(workflowName, camName, now)

	bc, err := p.InsertBroadcast(ctx, BroadcastSpec{
		Title:               title,
		Description:         renderDescription(s.description, workflowName, camName),
		ScheduledStart:      now.Add(scheduleLead),
		PrivacyStatus:       privacy,
		MadeForKids:         false,
		EnableAutoStart:     true,
		EnableAutoStop:      false,
		LatencyPreference:   "low",
		EnableMonitorStream: false,
	})
	if err != nil {
		return nil, upstream("create broadcast", err)
	}
	videoID := bc.ID

	if err := p.BindBroadcast(ctx, bc.ID, stream.ID); err != nil {
		return nil, upstream("bind stream to broadcast", err)
	}
	log.Info("broadcast bound", slog.String("broadcast_id", bc.ID), slog.String("stream_id", stream.ID))

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	playlistID, err := s.ensureDevicePlaylist(ctx, p, workflowName, privacy)
	if err != nil {
		return nil, err
	}

	outcome := AddToPlaylist(ctx, p, playlistID, videoID)
	if outcome.Added() {
		log.Info("broadcast added to playlist", slog.String("broadcast_id", videoID), slog.String("playlist_id", playlistID))
	} else {
		log.Warn("adding broadcast to playlist failed",
			slog.String("broadcast_id", videoID),
			slog.String("playlist_id", playlistID),
			slog.String("error", outcome.Err.Error()))
	}

	return &CreateResult{
		BroadcastID:       bc.ID,
		VideoID:           videoID,
		StreamID:          stream.ID,
		PlaylistID:        playlistID,
		Title:             title,
		PrivacyStatus:     privacy,
		FFmpegURL:         stream.IngestURL(),
		VideoURL:          WatchURL(videoID),
		PlaylistAddStatus: outcome.String(),
	}, nil
}

// EndActiveBroadcastsForDevice transitions every active broadcast whose title
// matches workflowName and whose lifecycle status is live or testing to
// complete. Only the first ListPageSize active broadcasts are considered.
// It returns the ids it ended, possibly none.
func (s *Service) EndActiveBroadcastsForDevice(ctx context.Context, workflowName string) ([]string, error) {
	p, err := s.platforms.Platform(ctx)
	if err != nil {
		return nil, err
	}

	active, err := p.ListActiveBroadcasts(ctx, ListPageSize)
	if err != nil {
		return nil, upstream("list active broadcasts", err)
	}

	var ended []string
	for _, b := range active {
		if !MatchesDevice(b.Title, workflowName) || !endable(b.LifeCycleStatus) {
			continue
		}
		s.log.Info("ending broadcast",
			slog.String("broadcast_id", b.ID),
			slog.String("title", b.Title),
			slog.String("status", b.LifeCycleStatus))
		if err := p.TransitionBroadcast(ctx, b.ID, LifeCycleComplete); err != nil {
			return ended, upstream(fmt.Sprintf("transition broadcast %s", b.ID), err)
		}
		ended = append(ended, b.ID)
	}
	return ended, nil
}

// ChannelID returns the authenticated channel's id.
func (s *Service) ChannelID(ctx context.Context) (string, error) {
	p, err := s.platforms.Platform(ctx)
	if err != nil {
		return "", err
	}
	id, err := p.ChannelID(ctx)
	if err != nil {
		return "", upstream("get own channel", err)
	}
	return id, nil
}

func endable(status string) bool {
	return status == LifeCycleLive || status == LifeCycleTesting
}

func (s *Service) ensureDevicePlaylist(ctx context.Context, p Platform, workflowName string, privacy PrivacyStatus) (string, error) {
	playlists, err := p.ListPlaylists(ctx, ListPageSize)
	if err != nil {
		return "", upstream("list playlists", err)
	}
	if pl, ok := FindDevicePlaylist(playlists, workflowName); ok {
		return pl.ID, nil
	}

	pl, err := p.InsertPlaylist(ctx, PlaylistSpec{
		Title:         PlaylistTitle(workflowName),
		Description:   playlistDescription(workflowName),
		PrivacyStatus: privacy,
	})
	if err != nil {
		return "", upstream("create playlist", err)
	}
	s.log.Info("device playlist created", slog.String("workflow_name", workflowName), slog.String("playlist_id", pl.ID))
	return pl.ID, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PlaylistAddOutcome is the result of the best-effort playlist insertion.
// A nil Err means the video was added.
type PlaylistAddOutcome struct {
	Err error
}

// Added reports whether the insertion succeeded.
func (o PlaylistAddOutcome) Added() bool { return o.Err == nil }

// String renders "added" or "failed - {detail}".
func (o PlaylistAddOutcome) String() string {
	if o.Err == nil {
		return "added"
	}
	return "failed - " + o.Err.Error()
}

// AddToPlaylist inserts videoID into playlistID. Failure is returned as data.
func AddToPlaylist(ctx context.Context, p Platform, playlistID, videoID string) PlaylistAddOutcome {
	return PlaylistAddOutcome{Err: p.InsertPlaylistItem(ctx, playlistID, videoID)}
}
