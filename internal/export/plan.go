package export

import (
	"sort"

	"github.com/reelcut/reelcut-engine/internal/timeline"
)

// Segment is one span of the timeline during which the set of active clips
// does not change. The render pipeline processes the edit segment by
// segment; an empty Clips slice means black/silence for the span.
type Segment struct {
	Start float64
	End   float64
	Clips []timeline.TrackClip
}

// BuildPlan slices the timeline at every clip boundary on unmuted tracks
// and queries the active clips inside each slice. Consecutive boundaries
// delimit segments; clips are in track order within a segment.
func BuildPlan(snap *timeline.Timeline) []Segment {
	boundarySet := map[float64]struct{}{}
	for _, track := range snap.Tracks {
		if track.Muted {
			continue
		}
		for _, clip := range track.Clips {
			boundarySet[clip.TrackPosition] = struct{}{}
			boundarySet[clip.End()] = struct{}{}
		}
	}
	if len(boundarySet) == 0 {
		return nil
	}

	boundaries := make([]float64, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Float64s(boundaries)
	if boundaries[0] > 0 {
		boundaries = append([]float64{0}, boundaries...)
	}

	var segments []Segment
	for i := 0; i+1 < len(boundaries); i++ {
		start, end := boundaries[i], boundaries[i+1]
		// Active set is constant inside the slice; the start point is
		// inside it because intervals are half-open.
		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Clips: snap.ClipsAt(start),
		})
	}
	return segments
}
