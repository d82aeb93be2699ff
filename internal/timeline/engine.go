package timeline

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Mutating operations either fully succeed or leave the timeline untouched.
// Callers that need mutual exclusion go through Service; the methods here
// assume they have the timeline to themselves.

// AddTrack appends a new empty track and returns it.
func (t *Timeline) AddTrack(trackType TrackType) *Track {
	track := NewTrack(trackType)
	t.Tracks = append(t.Tracks, track)
	return track
}

// RemoveTrack removes a track and every clip on it.
func (t *Timeline) RemoveTrack(trackID string) error {
	for i, track := range t.Tracks {
		if track.ID == trackID {
			t.Tracks = append(t.Tracks[:i], t.Tracks[i+1:]...)
			t.recomputeDuration()
			return nil
		}
	}
	return fmt.Errorf("track %s: %w", trackID, ErrNotFound)
}

func (t *Timeline) findTrack(trackID string) *Track {
	for _, track := range t.Tracks {
		if track.ID == trackID {
			return track
		}
	}
	return nil
}

// FindClip locates a clip by id across all tracks. Clip ids are unique
// within a timeline.
func (t *Timeline) FindClip(clipID string) (*Track, *Clip) {
	for _, track := range t.Tracks {
		for _, clip := range track.Clips {
			if clip.ID == clipID {
				return track, clip
			}
		}
	}
	return nil, nil
}

// SetTrackMuted toggles exclusion of the track's clips from composite
// queries and export.
func (t *Timeline) SetTrackMuted(trackID string, muted bool) error {
	track := t.findTrack(trackID)
	if track == nil {
		return fmt.Errorf("track %s: %w", trackID, ErrNotFound)
	}
	track.Muted = muted
	return nil
}

func (t *Timeline) SetTrackLocked(trackID string, locked bool) error {
	track := t.findTrack(trackID)
	if track == nil {
		return fmt.Errorf("track %s: %w", trackID, ErrNotFound)
	}
	track.Locked = locked
	return nil
}

// AddClip validates and inserts an already-built clip into the given track.
// No silent displacement: if the clip's interval collides with an existing
// clip the operation fails and nothing changes.
func (t *Timeline) AddClip(trackID string, clip *Clip) error {
	track := t.findTrack(trackID)
	if track == nil {
		return fmt.Errorf("track %s: %w", trackID, ErrNotFound)
	}
	if track.Locked {
		return fmt.Errorf("track %s: %w", trackID, ErrTrackLocked)
	}
	if clip.TrackPosition < 0 {
		return fmt.Errorf("position %v: %w", clip.TrackPosition, ErrInvalidBounds)
	}
	if clip.Duration <= 0 {
		return fmt.Errorf("duration %v: %w", clip.Duration, ErrInvalidBounds)
	}
	if other := track.overlapping(clip); other != nil {
		return fmt.Errorf("interval [%v, %v) collides with clip %s at %v: %w",
			clip.TrackPosition, clip.End(), other.ID, other.TrackPosition, ErrOverlap)
	}

	track.insertClip(clip)
	t.recomputeDuration()
	return nil
}

// RemoveClip deletes a clip. Gaps are preserved: subsequent clips do not
// ripple.
func (t *Timeline) RemoveClip(clipID string) error {
	for _, track := range t.Tracks {
		for i, clip := range track.Clips {
			if clip.ID != clipID {
				continue
			}
			if track.Locked {
				return fmt.Errorf("track %s: %w", track.ID, ErrTrackLocked)
			}
			track.Clips = append(track.Clips[:i], track.Clips[i+1:]...)
			t.recomputeDuration()
			return nil
		}
	}
	return fmt.Errorf("clip %s: %w", clipID, ErrNotFound)
}

// MoveClip relocates a clip to a new track and position. The move is atomic:
// on any failure the clip stays on its original track at its original
// position.
func (t *Timeline) MoveClip(clipID, newTrackID string, newPosition float64) error {
	srcTrack, clip := t.FindClip(clipID)
	if clip == nil {
		return fmt.Errorf("clip %s: %w", clipID, ErrNotFound)
	}
	if srcTrack.Locked {
		return fmt.Errorf("track %s: %w", srcTrack.ID, ErrTrackLocked)
	}
	dstTrack := t.findTrack(newTrackID)
	if dstTrack == nil {
		return fmt.Errorf("track %s: %w", newTrackID, ErrNotFound)
	}
	if dstTrack.Locked {
		return fmt.Errorf("track %s: %w", newTrackID, ErrTrackLocked)
	}
	if newPosition < 0 {
		return fmt.Errorf("position %v: %w", newPosition, ErrInvalidBounds)
	}

	// Probe the destination interval before touching anything. The moving
	// clip is skipped by id, so moving within a track never collides with
	// the clip's old position.
	probe := &Clip{ID: clip.ID, TrackPosition: newPosition, Duration: clip.Duration}
	if other := dstTrack.overlapping(probe); other != nil {
		return fmt.Errorf("interval [%v, %v) collides with clip %s at %v: %w",
			newPosition, newPosition+clip.Duration, other.ID, other.TrackPosition, ErrOverlap)
	}

	srcTrack.removeClip(clipID)
	clip.TrackPosition = newPosition
	dstTrack.insertClip(clip)
	t.recomputeDuration()
	return nil
}

// TrimClip adjusts the window into the source media. The clip's timeline
// anchor stays fixed; only the duration changes, so the new extent is
// re-checked against neighbors. Bounds against the source media's duration
// are the caller's responsibility (Service consults the media catalog).
func (t *Timeline) TrimClip(clipID string, trimStart, trimEnd float64) error {
	track, clip := t.FindClip(clipID)
	if clip == nil {
		return fmt.Errorf("clip %s: %w", clipID, ErrNotFound)
	}
	if track.Locked {
		return fmt.Errorf("track %s: %w", track.ID, ErrTrackLocked)
	}
	if trimStart < 0 || trimStart >= trimEnd {
		return fmt.Errorf("trim [%v, %v): %w", trimStart, trimEnd, ErrInvalidBounds)
	}

	newDuration := (trimEnd - trimStart) / clip.Speed
	probe := &Clip{ID: clip.ID, TrackPosition: clip.TrackPosition, Duration: newDuration}
	if other := track.overlapping(probe); other != nil {
		return fmt.Errorf("trimmed extent [%v, %v) collides with clip %s: %w",
			clip.TrackPosition, clip.TrackPosition+newDuration, other.ID, ErrOverlap)
	}

	clip.TrimStart = trimStart
	clip.TrimEnd = trimEnd
	clip.Duration = newDuration
	t.recomputeDuration()
	return nil
}

// SplitClip cuts a clip in two at an absolute timeline time strictly inside
// the clip's interval. The original clip id is retired and two new clips
// take its place, covering exactly the original interval.
func (t *Timeline) SplitClip(clipID string, splitTime float64) (*Clip, *Clip, error) {
	track, clip := t.FindClip(clipID)
	if clip == nil {
		return nil, nil, fmt.Errorf("clip %s: %w", clipID, ErrNotFound)
	}
	if track.Locked {
		return nil, nil, fmt.Errorf("track %s: %w", track.ID, ErrTrackLocked)
	}
	if splitTime <= clip.TrackPosition || splitTime >= clip.End() {
		return nil, nil, fmt.Errorf("split time %v outside clip (%v, %v): %w",
			splitTime, clip.TrackPosition, clip.End(), ErrInvalidBounds)
	}

	splitOffset := splitTime - clip.TrackPosition
	sourceSplit := clip.TrimStart + splitOffset*clip.Speed

	first := clip.Clone()
	first.ID = uuid.NewString()
	first.Duration = splitOffset
	first.TrimEnd = sourceSplit

	second := clip.Clone()
	second.ID = uuid.NewString()
	second.TrackPosition = splitTime
	second.Duration = clip.Duration - splitOffset
	second.TrimStart = sourceSplit

	track.removeClip(clipID)
	track.insertClip(first)
	track.insertClip(second)
	t.recomputeDuration()
	return first, second, nil
}

// TrackClip pairs a clip with the track that owns it.
type TrackClip struct {
	Track *Track
	Clip  *Clip
}

// ClipsAt returns every clip on an unmuted track whose half-open interval
// contains the given time, in track order.
func (t *Timeline) ClipsAt(time float64) []TrackClip {
	var out []TrackClip
	for _, track := range t.Tracks {
		if track.Muted {
			continue
		}
		for _, clip := range track.Clips {
			if time >= clip.TrackPosition && time < clip.End() {
				out = append(out, TrackClip{Track: track, Clip: clip})
			}
		}
	}
	return out
}

// overlapping returns the first existing clip whose interval intersects the
// candidate's, ignoring any clip with the candidate's id. Intervals are
// half-open, so exactly adjacent clips do not collide.
func (tr *Track) overlapping(candidate *Clip) *Clip {
	start := candidate.TrackPosition
	end := candidate.End()
	for _, existing := range tr.Clips {
		if existing.ID == candidate.ID {
			continue
		}
		if start < existing.End() && end > existing.TrackPosition {
			return existing
		}
	}
	return nil
}

// insertClip keeps track.Clips ordered by position.
func (tr *Track) insertClip(clip *Clip) {
	i := sort.Search(len(tr.Clips), func(i int) bool {
		return tr.Clips[i].TrackPosition > clip.TrackPosition
	})
	tr.Clips = append(tr.Clips, nil)
	copy(tr.Clips[i+1:], tr.Clips[i:])
	tr.Clips[i] = clip
}

func (tr *Track) removeClip(clipID string) {
	for i, clip := range tr.Clips {
		if clip.ID == clipID {
			tr.Clips = append(tr.Clips[:i], tr.Clips[i+1:]...)
			return
		}
	}
}

// recomputeDuration derives the timeline duration from scratch: the maximum
// clip end across all tracks, 0 for an empty timeline.
func (t *Timeline) recomputeDuration() {
	max := 0.0
	for _, track := range t.Tracks {
		for _, clip := range track.Clips {
			if end := clip.End(); end > max {
				max = end
			}
		}
	}
	t.Duration = max
}
