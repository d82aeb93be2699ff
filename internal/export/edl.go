// Package export turns timeline snapshots into artifacts for downstream
// tools: a CMX3600-style EDL cut list, a per-segment composition plan, and
// ffmpeg filter strings for clip effects. It only ever reads snapshots.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/reelcut/reelcut-engine/internal/timeline"
)

// CutEntry is one event in the generated EDL: a window into a source placed
// at a record position. Times are seconds.
type CutEntry struct {
	ClipName  string
	MediaPath string
	SourceIn  float64
	SourceOut float64
	RecordIn  float64
	RecordOut float64
}

// MediaPathResolver maps a media_ref to an on-disk path for the EDL comment
// lines. Unresolvable refs are listed in the entry with an empty path.
type MediaPathResolver func(mediaRef string) (string, bool)

// Cutlist flattens the first unmuted video track into EDL entries. Clips are
// already position-ordered on the track; record times are the clip's actual
// timeline placement, so gaps in the edit stay gaps in the EDL.
func Cutlist(snap *timeline.Timeline, resolve MediaPathResolver) []CutEntry {
	var entries []CutEntry
	for _, track := range snap.Tracks {
		if track.Type != timeline.TrackVideo || track.Muted {
			continue
		}
		for _, clip := range track.Clips {
			name := clip.Name
			if name == "" {
				name = clip.MediaRef
			}
			path := ""
			if resolve != nil {
				path, _ = resolve(clip.MediaRef)
			}
			entries = append(entries, CutEntry{
				ClipName:  SafeName(name, 160),
				MediaPath: path,
				SourceIn:  clip.TrimStart,
				SourceOut: clip.TrimEnd,
				RecordIn:  clip.TrackPosition,
				RecordOut: clip.End(),
			})
		}
		break
	}
	return entries
}

// GenerateEDL renders a CMX3600-style cut list for the timeline's primary
// video track.
func GenerateEDL(snap *timeline.Timeline, resolve MediaPathResolver) string {
	fps := int(math.Round(snap.Framerate))
	if fps <= 0 {
		fps = 30
	}
	isDropFrame := math.Abs(snap.Framerate-29.97) < 0.01 || math.Abs(snap.Framerate-59.94) < 0.01

	title := SafeName(snap.Name, 120)
	if title == "" {
		title = "reelcut_export"
	}

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, entry := range Cutlist(snap, resolve) {
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V",
				secondsToTimecode(entry.SourceIn, fps),
				secondsToTimecode(entry.SourceOut, fps),
				secondsToTimecode(entry.RecordIn, fps),
				secondsToTimecode(entry.RecordOut, fps)),
			fmt.Sprintf("* FROM CLIP NAME:  %s", entry.ClipName),
		)
		if entry.MediaPath != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", entry.MediaPath))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func secondsToTimecode(seconds float64, fps int) string {
	totalFrames := int(math.Round(seconds * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	secs := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, secs, frames)
}
