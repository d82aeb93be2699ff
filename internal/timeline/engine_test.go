package timeline

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func newTestTimeline() *Timeline {
	return New("Test Timeline", 30.0, Resolution{Width: 1920, Height: 1080})
}

func newTestClip(position, duration float64) *Clip {
	return &Clip{
		ID:            uuid.NewString(),
		MediaRef:      "test-media",
		Name:          "test-clip.mp4",
		TrackPosition: position,
		Duration:      duration,
		TrimStart:     0,
		TrimEnd:       duration,
		Speed:         1.0,
		Volume:        1.0,
	}
}

// checkInvariants asserts the non-overlap and derived-duration invariants
// that must hold after every successful mutation.
func checkInvariants(t *testing.T, tl *Timeline) {
	t.Helper()

	for _, track := range tl.Tracks {
		for i, a := range track.Clips {
			for j, b := range track.Clips {
				if i == j {
					continue
				}
				if a.End() > b.TrackPosition && b.End() > a.TrackPosition {
					t.Fatalf("clips %s [%v,%v) and %s [%v,%v) overlap on track %s",
						a.ID, a.TrackPosition, a.End(), b.ID, b.TrackPosition, b.End(), track.ID)
				}
			}
		}
	}

	want := 0.0
	for _, track := range tl.Tracks {
		for _, c := range track.Clips {
			if c.End() > want {
				want = c.End()
			}
		}
	}
	if tl.Duration != want {
		t.Fatalf("timeline duration = %v, want %v", tl.Duration, want)
	}
}

func TestAddClip(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)

	clip := newTestClip(0, 10)
	if err := tl.AddClip(track.ID, clip); err != nil {
		t.Fatalf("AddClip() error = %v", err)
	}

	if tl.Duration != 10.0 {
		t.Errorf("timeline duration = %v, want 10.0", tl.Duration)
	}
	checkInvariants(t, tl)
}

func TestAddClip_Overlap(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)

	if err := tl.AddClip(track.ID, newTestClip(0, 10)); err != nil {
		t.Fatalf("AddClip() error = %v", err)
	}

	err := tl.AddClip(track.ID, newTestClip(5, 3))
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("AddClip() error = %v, want ErrOverlap", err)
	}

	if len(track.Clips) != 1 {
		t.Errorf("track has %d clips after failed add, want 1", len(track.Clips))
	}
	if tl.Duration != 10.0 {
		t.Errorf("timeline duration = %v, want 10.0 (unchanged)", tl.Duration)
	}
}

func TestAddClip_AdjacentClipsAllowed(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)

	if err := tl.AddClip(track.ID, newTestClip(0, 5)); err != nil {
		t.Fatalf("AddClip() error = %v", err)
	}
	// [0,5) and [5,8) share only the boundary point.
	if err := tl.AddClip(track.ID, newTestClip(5, 3)); err != nil {
		t.Fatalf("AddClip() adjacent error = %v", err)
	}
	checkInvariants(t, tl)
}

func TestAddClip_Validation(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)

	tests := []struct {
		name string
		clip *Clip
		want error
	}{
		{"negative position", newTestClip(-1, 5), ErrInvalidBounds},
		{"zero duration", newTestClip(0, 0), ErrInvalidBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tl.AddClip(track.ID, tt.clip); !errors.Is(err, tt.want) {
				t.Errorf("AddClip() error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := tl.AddClip("missing-track", newTestClip(0, 5)); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddClip() on missing track error = %v, want ErrNotFound", err)
	}

	track.Locked = true
	if err := tl.AddClip(track.ID, newTestClip(0, 5)); !errors.Is(err, ErrTrackLocked) {
		t.Errorf("AddClip() on locked track error = %v, want ErrTrackLocked", err)
	}
}

func TestRemoveClip(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)

	a := newTestClip(0, 5)
	b := newTestClip(10, 5)
	tl.AddClip(track.ID, a)
	tl.AddClip(track.ID, b)

	if err := tl.RemoveClip(a.ID); err != nil {
		t.Fatalf("RemoveClip() error = %v", err)
	}

	// No ripple: the gap stays, the remaining clip does not shift.
	if len(track.Clips) != 1 || track.Clips[0].TrackPosition != 10 {
		t.Errorf("remaining clip at %v, want 10 (gaps preserved)", track.Clips[0].TrackPosition)
	}
	if tl.Duration != 15.0 {
		t.Errorf("timeline duration = %v, want 15.0", tl.Duration)
	}

	if err := tl.RemoveClip("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveClip() error = %v, want ErrNotFound", err)
	}

	tl.RemoveClip(b.ID)
	if tl.Duration != 0 {
		t.Errorf("empty timeline duration = %v, want 0", tl.Duration)
	}
}

func TestRemoveClip_LockedTrack(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 5)
	tl.AddClip(track.ID, clip)
	track.Locked = true

	if err := tl.RemoveClip(clip.ID); !errors.Is(err, ErrTrackLocked) {
		t.Errorf("RemoveClip() error = %v, want ErrTrackLocked", err)
	}
	if len(track.Clips) != 1 {
		t.Error("clip removed from locked track")
	}
}

func TestMoveClip(t *testing.T) {
	tl := newTestTimeline()
	t1 := tl.AddTrack(TrackVideo)
	t2 := tl.AddTrack(TrackVideo)

	clip := newTestClip(0, 5)
	tl.AddClip(t1.ID, clip)

	if err := tl.MoveClip(clip.ID, t2.ID, 7); err != nil {
		t.Fatalf("MoveClip() error = %v", err)
	}

	if len(t1.Clips) != 0 || len(t2.Clips) != 1 {
		t.Fatalf("clip counts after move: src=%d dst=%d, want 0/1", len(t1.Clips), len(t2.Clips))
	}
	if t2.Clips[0].TrackPosition != 7 {
		t.Errorf("moved clip position = %v, want 7", t2.Clips[0].TrackPosition)
	}
	checkInvariants(t, tl)
}

func TestMoveClip_SameTrack(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 5)
	tl.AddClip(track.ID, clip)

	// Moving within a track never collides with the clip's own old interval.
	if err := tl.MoveClip(clip.ID, track.ID, 2); err != nil {
		t.Fatalf("MoveClip() same-track error = %v", err)
	}
	if clip.TrackPosition != 2 {
		t.Errorf("clip position = %v, want 2", clip.TrackPosition)
	}
	checkInvariants(t, tl)
}

func TestMoveClip_OverlapIsAtomic(t *testing.T) {
	tl := newTestTimeline()
	t1 := tl.AddTrack(TrackVideo)
	t2 := tl.AddTrack(TrackVideo)

	moving := newTestClip(5, 2)
	tl.AddClip(t1.ID, moving)
	// Target track already covers [0,3), fully containing the target interval.
	tl.AddClip(t2.ID, newTestClip(0, 3))

	err := tl.MoveClip(moving.ID, t2.ID, 0)
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("MoveClip() error = %v, want ErrOverlap", err)
	}

	// The failed move must not be observable.
	if len(t1.Clips) != 1 || t1.Clips[0].ID != moving.ID {
		t.Fatal("clip left its source track on failed move")
	}
	if t1.Clips[0].TrackPosition != 5 {
		t.Errorf("clip position = %v, want 5 (unchanged)", t1.Clips[0].TrackPosition)
	}
	checkInvariants(t, tl)
}

func TestMoveClip_Validation(t *testing.T) {
	tl := newTestTimeline()
	t1 := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 5)
	tl.AddClip(t1.ID, clip)

	if err := tl.MoveClip("missing", t1.ID, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing clip error = %v, want ErrNotFound", err)
	}
	if err := tl.MoveClip(clip.ID, "missing-track", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing track error = %v, want ErrNotFound", err)
	}
	if err := tl.MoveClip(clip.ID, t1.ID, -1); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("negative position error = %v, want ErrInvalidBounds", err)
	}

	locked := tl.AddTrack(TrackVideo)
	locked.Locked = true
	if err := tl.MoveClip(clip.ID, locked.ID, 0); !errors.Is(err, ErrTrackLocked) {
		t.Errorf("locked target error = %v, want ErrTrackLocked", err)
	}
}

func TestTrimClip(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 10)
	tl.AddClip(track.ID, clip)

	if err := tl.TrimClip(clip.ID, 2, 8); err != nil {
		t.Fatalf("TrimClip() error = %v", err)
	}

	// The timeline anchor stays fixed; only the visible window changes.
	if clip.TrackPosition != 0 {
		t.Errorf("track position = %v, want 0", clip.TrackPosition)
	}
	if clip.Duration != 6.0 {
		t.Errorf("duration = %v, want 6.0", clip.Duration)
	}
	if tl.Duration != 6.0 {
		t.Errorf("timeline duration = %v, want 6.0", tl.Duration)
	}
	checkInvariants(t, tl)
}

func TestTrimClip_SpeedDerivesDuration(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 10)
	clip.Speed = 2.0
	clip.Duration = 5.0
	tl.AddClip(track.ID, clip)

	if err := tl.TrimClip(clip.ID, 0, 8); err != nil {
		t.Fatalf("TrimClip() error = %v", err)
	}
	if clip.Duration != 4.0 {
		t.Errorf("duration = %v, want 4.0 ((8-0)/2.0)", clip.Duration)
	}
}

func TestTrimClip_LockedTrack(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 5)
	tl.AddClip(track.ID, clip)
	track.Locked = true

	if err := tl.TrimClip(clip.ID, 1, 4); !errors.Is(err, ErrTrackLocked) {
		t.Fatalf("TrimClip() error = %v, want ErrTrackLocked", err)
	}
	if clip.TrimStart != 0 || clip.TrimEnd != 5 || clip.Duration != 5 {
		t.Error("clip changed by failed trim on locked track")
	}
}

func TestTrimClip_GrowIntoNeighborFails(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	a := newTestClip(0, 5)
	tl.AddClip(track.ID, a)
	tl.AddClip(track.ID, newTestClip(5, 5))

	// Growing a to [0,7) would run into the neighbor at [5,10).
	err := tl.TrimClip(a.ID, 0, 7)
	if !errors.Is(err, ErrOverlap) {
		t.Fatalf("TrimClip() error = %v, want ErrOverlap", err)
	}
	if a.Duration != 5 {
		t.Errorf("duration = %v, want 5 (unchanged)", a.Duration)
	}
	checkInvariants(t, tl)
}

func TestTrimClip_InvalidBounds(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 10)
	tl.AddClip(track.ID, clip)

	tests := []struct {
		name       string
		start, end float64
	}{
		{"start equals end", 3, 3},
		{"start after end", 5, 2},
		{"negative start", -1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tl.TrimClip(clip.ID, tt.start, tt.end); !errors.Is(err, ErrInvalidBounds) {
				t.Errorf("TrimClip(%v, %v) error = %v, want ErrInvalidBounds", tt.start, tt.end, err)
			}
		})
	}
}

func TestSplitClip(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 10)
	clip.TrimStart = 2
	clip.TrimEnd = 12
	origID := clip.ID
	tl.AddClip(track.ID, clip)

	first, second, err := tl.SplitClip(clip.ID, 4)
	if err != nil {
		t.Fatalf("SplitClip() error = %v", err)
	}

	if first.TrackPosition != 0 || first.Duration != 4 {
		t.Errorf("first = [%v,%v), want [0,4)", first.TrackPosition, first.End())
	}
	if second.TrackPosition != 4 || second.Duration != 6 {
		t.Errorf("second = [%v,%v), want [4,10)", second.TrackPosition, second.End())
	}
	if first.TrimStart != 2 || first.TrimEnd != 6 {
		t.Errorf("first trim = [%v,%v], want [2,6]", first.TrimStart, first.TrimEnd)
	}
	if second.TrimStart != 6 || second.TrimEnd != 12 {
		t.Errorf("second trim = [%v,%v], want [6,12]", second.TrimStart, second.TrimEnd)
	}

	// The original id is retired.
	if _, c := tl.FindClip(origID); c != nil {
		t.Error("original clip id still resolves after split")
	}

	// Half-open intervals: the split point belongs to the second clip only.
	at := tl.ClipsAt(4)
	if len(at) != 1 || at[0].Clip.ID != second.ID {
		t.Errorf("ClipsAt(4) = %d clips, want exactly the second clip", len(at))
	}
	checkInvariants(t, tl)
}

func TestSplitClip_CoverageIsExact(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(3, 9)
	tl.AddClip(track.ID, clip)

	first, second, err := tl.SplitClip(clip.ID, 7.5)
	if err != nil {
		t.Fatalf("SplitClip() error = %v", err)
	}

	if first.TrackPosition != 3 || second.End() != 12 {
		t.Errorf("union = [%v,%v), want [3,12)", first.TrackPosition, second.End())
	}
	if first.End() != second.TrackPosition {
		t.Errorf("gap between parts: first ends %v, second starts %v", first.End(), second.TrackPosition)
	}

	// Every probe inside the original span hits exactly one of the parts.
	for _, probe := range []float64{3, 5, 7.49, 7.5, 9, 11.99} {
		at := tl.ClipsAt(probe)
		if len(at) != 1 {
			t.Errorf("ClipsAt(%v) = %d clips, want 1", probe, len(at))
		}
	}
	checkInvariants(t, tl)
}

func TestSplitClip_AtSpeed(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(0, 5)
	clip.Speed = 2.0
	clip.TrimEnd = 10 // (10-0)/2.0 = 5s on the timeline
	tl.AddClip(track.ID, clip)

	first, second, err := tl.SplitClip(clip.ID, 2)
	if err != nil {
		t.Fatalf("SplitClip() error = %v", err)
	}
	// 2s of timeline at 2x speed is 4s of source.
	if first.TrimEnd != 4 || second.TrimStart != 4 {
		t.Errorf("source split at %v/%v, want 4/4", first.TrimEnd, second.TrimStart)
	}
}

func TestSplitClip_EdgeRejected(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	clip := newTestClip(2, 6)
	tl.AddClip(track.ID, clip)

	for _, at := range []float64{2, 8, 1, 9} {
		if _, _, err := tl.SplitClip(clip.ID, at); !errors.Is(err, ErrInvalidBounds) {
			t.Errorf("SplitClip(%v) error = %v, want ErrInvalidBounds", at, err)
		}
	}
	if len(track.Clips) != 1 || track.Clips[0].ID != clip.ID {
		t.Error("failed split left the track in a half-split state")
	}
}

func TestClipsAt(t *testing.T) {
	tl := newTestTimeline()
	video := tl.AddTrack(TrackVideo)
	audio := tl.AddTrack(TrackAudio)
	muted := tl.AddTrack(TrackOverlay)

	tl.AddClip(video.ID, newTestClip(0, 10))
	tl.AddClip(audio.ID, newTestClip(5, 10))
	tl.AddClip(muted.ID, newTestClip(0, 20))
	muted.Muted = true

	at := tl.ClipsAt(7)
	if len(at) != 2 {
		t.Fatalf("ClipsAt(7) = %d clips, want 2 (muted track excluded)", len(at))
	}
	// Track order, not clip start order.
	if at[0].Track.ID != video.ID || at[1].Track.ID != audio.ID {
		t.Error("ClipsAt() not in track order")
	}

	// Half-open: the end of [0,10) is not contained.
	at = tl.ClipsAt(10)
	if len(at) != 1 || at[0].Track.ID != audio.ID {
		t.Errorf("ClipsAt(10) = %d clips, want only the audio clip", len(at))
	}

	if got := tl.ClipsAt(100); len(got) != 0 {
		t.Errorf("ClipsAt(100) = %d clips, want 0", len(got))
	}
}

func TestRemoveTrack(t *testing.T) {
	tl := newTestTimeline()
	track := tl.AddTrack(TrackVideo)
	tl.AddClip(track.ID, newTestClip(0, 10))

	if err := tl.RemoveTrack(track.ID); err != nil {
		t.Fatalf("RemoveTrack() error = %v", err)
	}
	if len(tl.Tracks) != 0 {
		t.Errorf("tracks = %d, want 0", len(tl.Tracks))
	}
	if tl.Duration != 0 {
		t.Errorf("duration = %v, want 0 after removing the only populated track", tl.Duration)
	}

	if err := tl.RemoveTrack("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveTrack() error = %v, want ErrNotFound", err)
	}
}

func TestFrameStep(t *testing.T) {
	tl := New("t", 25.0, Resolution{Width: 1280, Height: 720})
	if got := tl.FrameStep(); got != 0.04 {
		t.Errorf("FrameStep() = %v, want 0.04", got)
	}
	tl.Framerate = 0
	if got := tl.FrameStep(); got != 0 {
		t.Errorf("FrameStep() with zero framerate = %v, want 0", got)
	}
}

// Generative check: random sequences of mutations never break the
// non-overlap or derived-duration invariants.
func TestRandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tl := newTestTimeline()
	for i := 0; i < 3; i++ {
		tl.AddTrack(TrackVideo)
	}

	var clipIDs []string
	for i := 0; i < 500; i++ {
		switch rng.Intn(5) {
		case 0:
			track := tl.Tracks[rng.Intn(len(tl.Tracks))]
			clip := newTestClip(float64(rng.Intn(60)), 1+float64(rng.Intn(10)))
			if err := tl.AddClip(track.ID, clip); err == nil {
				clipIDs = append(clipIDs, clip.ID)
			}
		case 1:
			if len(clipIDs) > 0 {
				id := clipIDs[rng.Intn(len(clipIDs))]
				tl.RemoveClip(id)
			}
		case 2:
			if len(clipIDs) > 0 {
				id := clipIDs[rng.Intn(len(clipIDs))]
				track := tl.Tracks[rng.Intn(len(tl.Tracks))]
				tl.MoveClip(id, track.ID, float64(rng.Intn(60)))
			}
		case 3:
			if len(clipIDs) > 0 {
				id := clipIDs[rng.Intn(len(clipIDs))]
				start := float64(rng.Intn(5))
				tl.TrimClip(id, start, start+1+float64(rng.Intn(8)))
			}
		case 4:
			if len(clipIDs) > 0 {
				id := clipIDs[rng.Intn(len(clipIDs))]
				if _, c := tl.FindClip(id); c != nil && c.Duration > 1 {
					if a, b, err := tl.SplitClip(id, c.TrackPosition+c.Duration/2); err == nil {
						clipIDs = append(clipIDs, a.ID, b.ID)
					}
				}
			}
		}
		checkInvariants(t, tl)
	}
}
