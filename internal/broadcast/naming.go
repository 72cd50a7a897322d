package broadcast

import (
	"fmt"
	"strings"
	"time"
)

// titleTimeLayout renders e.g. "2025-06-01 UTC 12:00".
const titleTimeLayout = "2006-01-02 UTC 15:04"

const watchURLPrefix = "https://www.youtube.com/watch?v="

// DefaultDescriptionTemplate is used when no template is configured.
// {workflow_name} and {cam_name} are substituted.
const DefaultDescriptionTemplate = "Live camera feed from {workflow_name} stationed in Toronto, ON " +
	"at the Acceleration Consortium (AC).\n\n" +
	"https://acceleration.utoronto.ca/"

// MatchesDevice reports whether title belongs to device: a case-insensitive
// substring match. Devices whose names contain one another collide.
func MatchesDevice(title, device string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(device))
}

// FindDevicePlaylist returns the first playlist whose title matches device.
func FindDevicePlaylist(playlists []Playlist, device string) (Playlist, bool) {
	for _, p := range playlists {
		if MatchesDevice(p.Title, device) {
			return p, true
		}
	}
	return Playlist{}, false
}

// BroadcastTitle composes "{workflow} stream {cam}, {YYYY-MM-DD UTC HH:MM}".
func BroadcastTitle(workflowName, camName string, now time.Time) string {
	return fmt.Sprintf("%s stream %s, %s", workflowName, camName, now.UTC().Format(titleTimeLayout))
}

// StreamTitle names the ingest stream created for a workflow.
func StreamTitle(workflowName string) string {
	return workflowName + " stream key"
}

// PlaylistTitle names the playlist created for a device with none yet.
func PlaylistTitle(workflowName string) string {
	return workflowName + " Livestreams Playlist"
}

func playlistDescription(workflowName string) string {
	return "Livestreams for device " + workflowName
}

func renderDescription(tmpl, workflowName, camName string) string {
	return strings.NewReplacer("{workflow_name}", workflowName, "{cam_name}", camName).Replace(tmpl)
}

// WatchURL is the public page for a video id.
func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}
