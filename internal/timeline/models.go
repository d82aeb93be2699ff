// Package timeline implements the edit-decision-list engine: the in-memory
// model of tracks and clips, the operations that mutate it, and the
// synchronized registry that exposes it to concurrent callers.
package timeline

import (
	"github.com/google/uuid"
)

type TrackType string

const (
	TrackVideo   TrackType = "video"
	TrackAudio   TrackType = "audio"
	TrackOverlay TrackType = "overlay"
)

func ParseTrackType(s string) (TrackType, bool) {
	switch TrackType(s) {
	case TrackVideo, TrackAudio, TrackOverlay:
		return TrackType(s), true
	}
	return "", false
}

type EffectKind string

const (
	EffectBrightness EffectKind = "brightness"
	EffectContrast   EffectKind = "contrast"
	EffectSaturation EffectKind = "saturation"
	EffectBlur       EffectKind = "blur"
	EffectSharpen    EffectKind = "sharpen"
	EffectNormalize  EffectKind = "normalize"
	EffectFadeIn     EffectKind = "fade_in"
	EffectFadeOut    EffectKind = "fade_out"
)

// Effect is a tagged descriptor the engine stores and serializes but never
// interprets. Params hold kind-specific values keyed by parameter name
// ("value", "radius", "amount", "duration").
type Effect struct {
	ID      string             `json:"id"`
	Kind    EffectKind         `json:"kind"`
	Enabled bool               `json:"enabled"`
	Params  map[string]float64 `json:"params,omitempty"`
}

func (e Effect) Clone() Effect {
	out := e
	if e.Params != nil {
		out.Params = make(map[string]float64, len(e.Params))
		for k, v := range e.Params {
			out.Params[k] = v
		}
	}
	return out
}

// Clip is one placement of a window into a media item on a track. Times are
// seconds. TrimStart/TrimEnd index into the source media's own timeline;
// Duration is the extent occupied on the track: (TrimEnd-TrimStart)/Speed.
type Clip struct {
	ID            string   `json:"id"`
	MediaRef      string   `json:"media_ref"`
	Name          string   `json:"name,omitempty"`
	TrackPosition float64  `json:"track_position"`
	Duration      float64  `json:"duration"`
	TrimStart     float64  `json:"trim_start"`
	TrimEnd       float64  `json:"trim_end"`
	Speed         float64  `json:"speed"`
	Volume        float64  `json:"volume"`
	Effects       []Effect `json:"effects,omitempty"`
}

// End returns the exclusive end of the clip's interval on the track.
func (c *Clip) End() float64 {
	return c.TrackPosition + c.Duration
}

func (c *Clip) Clone() *Clip {
	out := *c
	if c.Effects != nil {
		out.Effects = make([]Effect, len(c.Effects))
		for i, e := range c.Effects {
			out.Effects[i] = e.Clone()
		}
	}
	return &out
}

// Track is an ordered, type-homogeneous collection of non-overlapping clips.
type Track struct {
	ID     string    `json:"id"`
	Type   TrackType `json:"type"`
	Clips  []*Clip   `json:"clips"`
	Muted  bool      `json:"muted"`
	Locked bool      `json:"locked"`
}

func NewTrack(trackType TrackType) *Track {
	return &Track{
		ID:    uuid.NewString(),
		Type:  trackType,
		Clips: []*Clip{},
	}
}

func (t *Track) Clone() *Track {
	out := &Track{
		ID:     t.ID,
		Type:   t.Type,
		Clips:  make([]*Clip, len(t.Clips)),
		Muted:  t.Muted,
		Locked: t.Locked,
	}
	for i, c := range t.Clips {
		out.Clips[i] = c.Clone()
	}
	return out
}

type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Timeline is the full set of tracks plus global playback properties for one
// edit session. Duration is derived; it is recomputed after every mutation
// and never set directly.
type Timeline struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Framerate  float64    `json:"framerate"`
	Resolution Resolution `json:"resolution"`
	Tracks     []*Track   `json:"tracks"`
	Duration   float64    `json:"duration"`
}

func New(name string, framerate float64, res Resolution) *Timeline {
	return &Timeline{
		ID:         uuid.NewString(),
		Name:       name,
		Framerate:  framerate,
		Resolution: res,
		Tracks:     []*Track{},
	}
}

func (t *Timeline) Clone() *Timeline {
	out := &Timeline{
		ID:         t.ID,
		Name:       t.Name,
		Framerate:  t.Framerate,
		Resolution: t.Resolution,
		Tracks:     make([]*Track, len(t.Tracks)),
		Duration:   t.Duration,
	}
	for i, tr := range t.Tracks {
		out.Tracks[i] = tr.Clone()
	}
	return out
}

// FrameStep returns the duration of one frame, used by callers that snap the
// playhead to frame boundaries. Returns 0 for a non-positive framerate.
func (t *Timeline) FrameStep() float64 {
	if t.Framerate <= 0 {
		return 0
	}
	return 1.0 / t.Framerate
}
