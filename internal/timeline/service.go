package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/reelcut/reelcut-engine/internal/logging"
)

// MediaInfo is what the engine needs from the media catalog to validate trim
// bounds: the source's own duration and its kind.
type MediaInfo struct {
	Duration float64
	Kind     string
}

// MediaResolver is the consumed boundary with the media catalog. Resolve
// failures surface as ErrMediaUnavailable from the operations that need
// resolution; timeline data referencing the media stays intact.
type MediaResolver interface {
	Resolve(ctx context.Context, mediaRef string) (*MediaInfo, error)
}

// Service is the synchronized command surface over the engine. It owns a
// registry of independent timelines, each behind its own lock: one writer at
// a time per timeline, readers get deep-copied snapshots taken under the
// lock. Operations are applied in lock-acquisition order; no operation does
// I/O while holding a lock.
type Service struct {
	mu        sync.RWMutex
	timelines map[string]*entry

	media  MediaResolver
	logger *slog.Logger
}

type entry struct {
	mu sync.RWMutex
	t  *Timeline
}

// NewService creates an empty registry. media may be nil, in which case trim
// bounds are not validated against source durations (exercised by tests and
// by projects whose catalog lives elsewhere).
func NewService(media MediaResolver, logger *slog.Logger) *Service {
	return &Service{
		timelines: make(map[string]*entry),
		media:     media,
		logger:    logger,
	}
}

// Create registers a new timeline seeded with the conventional video+audio
// track pair.
func (s *Service) Create(name string, framerate float64, res Resolution) (*Timeline, error) {
	if framerate <= 0 {
		return nil, fmt.Errorf("framerate %v: %w", framerate, ErrInvalidBounds)
	}

	t := New(name, framerate, res)
	t.AddTrack(TrackVideo)
	t.AddTrack(TrackAudio)

	s.mu.Lock()
	s.timelines[t.ID] = &entry{t: t}
	s.mu.Unlock()

	if s.logger != nil {
		logging.WithTimelineID(s.logger, t.ID).Info("timeline created", "name", name, "framerate", framerate)
	}
	return t.Clone(), nil
}

// Register adopts an existing timeline (typically one loaded from a project
// file), replacing any registered timeline with the same id.
func (s *Service) Register(t *Timeline) {
	s.mu.Lock()
	s.timelines[t.ID] = &entry{t: t}
	s.mu.Unlock()
}

func (s *Service) Delete(timelineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timelines[timelineID]; !ok {
		return fmt.Errorf("timeline %s: %w", timelineID, ErrNotFound)
	}
	delete(s.timelines, timelineID)
	return nil
}

func (s *Service) entry(timelineID string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.timelines[timelineID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("timeline %s: %w", timelineID, ErrNotFound)
	}
	return e, nil
}

// Snapshot returns an immutable deep copy of the timeline, safe to read
// without further synchronization.
func (s *Service) Snapshot(timelineID string) (*Timeline, error) {
	e, err := s.entry(timelineID)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.t.Clone(), nil
}

// List returns snapshots of every registered timeline.
func (s *Service) List() []*Timeline {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.timelines))
	for _, e := range s.timelines {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*Timeline, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		out = append(out, e.t.Clone())
		e.mu.RUnlock()
	}
	return out
}

func (s *Service) AddTrack(timelineID string, trackType TrackType) (*Track, error) {
	e, err := s.entry(timelineID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	track := e.t.AddTrack(trackType)
	if s.logger != nil {
		logging.WithTimelineID(s.logger, timelineID).Info("track added", "track_id", track.ID, "type", trackType)
	}
	return track.Clone(), nil
}

func (s *Service) RemoveTrack(timelineID, trackID string) error {
	e, err := s.entry(timelineID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.RemoveTrack(trackID)
}

func (s *Service) SetTrackMuted(timelineID, trackID string, muted bool) error {
	e, err := s.entry(timelineID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.SetTrackMuted(trackID, muted)
}

func (s *Service) SetTrackLocked(timelineID, trackID string, locked bool) error {
	e, err := s.entry(timelineID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.SetTrackLocked(trackID, locked)
}

// AddClipParams carries caller-supplied coordinates for a new clip. Speed
// defaults to 1.0; Duration is always derived from the trim window and
// speed, never supplied. Volume is a gain multiplier: nil means the default
// of 1.0, while an explicit zero is a silenced clip.
type AddClipParams struct {
	MediaRef  string
	TrackID   string
	Name      string
	Position  float64
	TrimStart float64
	TrimEnd   float64
	Speed     float64
	Volume    *float64
}

// AddClip validates the trim window against the source media's duration via
// the resolver, then inserts the clip. Returns a snapshot of the new clip.
func (s *Service) AddClip(ctx context.Context, timelineID string, p AddClipParams) (*Clip, error) {
	if p.Speed == 0 {
		p.Speed = 1.0
	}
	if p.Speed < 0 {
		return nil, fmt.Errorf("speed %v: %w", p.Speed, ErrInvalidBounds)
	}
	volume := 1.0
	if p.Volume != nil {
		if *p.Volume < 0 {
			return nil, fmt.Errorf("volume %v: %w", *p.Volume, ErrInvalidBounds)
		}
		volume = *p.Volume
	}
	if p.TrimStart < 0 || p.TrimStart >= p.TrimEnd {
		return nil, fmt.Errorf("trim [%v, %v): %w", p.TrimStart, p.TrimEnd, ErrInvalidBounds)
	}
	if err := s.checkSourceBounds(ctx, p.MediaRef, p.TrimEnd); err != nil {
		return nil, err
	}

	clip := &Clip{
		ID:            uuid.NewString(),
		MediaRef:      p.MediaRef,
		Name:          p.Name,
		TrackPosition: p.Position,
		Duration:      (p.TrimEnd - p.TrimStart) / p.Speed,
		TrimStart:     p.TrimStart,
		TrimEnd:       p.TrimEnd,
		Speed:         p.Speed,
		Volume:        volume,
	}

	e, err := s.entry(timelineID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.t.AddClip(p.TrackID, clip); err != nil {
		return nil, err
	}
	if s.logger != nil {
		logging.WithTimelineID(s.logger, timelineID).Info("clip added", "track_id", p.TrackID,
			"clip_id", clip.ID, "position", clip.TrackPosition, "duration", clip.Duration)
	}
	return clip.Clone(), nil
}

func (s *Service) RemoveClip(timelineID, clipID string) error {
	e, err := s.entry(timelineID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.RemoveClip(clipID)
}

func (s *Service) MoveClip(timelineID, clipID, newTrackID string, newPosition float64) error {
	e, err := s.entry(timelineID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.MoveClip(clipID, newTrackID, newPosition)
}

// TrimClip re-validates the new trim window against the source media before
// delegating to the engine.
func (s *Service) TrimClip(ctx context.Context, timelineID, clipID string, trimStart, trimEnd float64) error {
	e, err := s.entry(timelineID)
	if err != nil {
		return err
	}

	e.mu.RLock()
	_, clip := e.t.FindClip(clipID)
	var mediaRef string
	if clip != nil {
		mediaRef = clip.MediaRef
	}
	e.mu.RUnlock()

	if clip == nil {
		return fmt.Errorf("clip %s: %w", clipID, ErrNotFound)
	}
	if err := s.checkSourceBounds(ctx, mediaRef, trimEnd); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.t.TrimClip(clipID, trimStart, trimEnd)
}

func (s *Service) SplitClip(timelineID, clipID string, splitTime float64) (*Clip, *Clip, error) {
	e, err := s.entry(timelineID)
	if err != nil {
		return nil, nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	first, second, err := e.t.SplitClip(clipID, splitTime)
	if err != nil {
		return nil, nil, err
	}
	if s.logger != nil {
		logging.WithTimelineID(s.logger, timelineID).Info("clip split", "clip_id", clipID,
			"at", splitTime, "first_id", first.ID, "second_id", second.ID)
	}
	return first.Clone(), second.Clone(), nil
}

// ClipsAt returns snapshots of every clip active at the given time on
// unmuted tracks, in track order.
func (s *Service) ClipsAt(timelineID string, time float64) ([]TrackClip, error) {
	e, err := s.entry(timelineID)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	live := e.t.ClipsAt(time)
	out := make([]TrackClip, len(live))
	for i, tc := range live {
		out[i] = TrackClip{Track: tc.Track.Clone(), Clip: tc.Clip.Clone()}
	}
	return out, nil
}

// SaveProject snapshots the timeline under the lock and writes the project
// file outside it, so disk latency never blocks edits.
func (s *Service) SaveProject(timelineID, path string) error {
	snap, err := s.Snapshot(timelineID)
	if err != nil {
		return err
	}
	if err := SaveProject(NewProject(snap), path); err != nil {
		return err
	}
	if s.logger != nil {
		logging.WithTimelineID(s.logger, timelineID).Info("project saved", "path", path)
	}
	return nil
}

// LoadProject reads a project file and registers its timeline. Dangling
// media references load fine; they only fail at first use.
func (s *Service) LoadProject(path string) (*Timeline, error) {
	p, err := LoadProject(path)
	if err != nil {
		return nil, err
	}
	p.Timeline.recomputeDuration()
	s.Register(p.Timeline)
	if s.logger != nil {
		logging.WithTimelineID(s.logger, p.Timeline.ID).Info("project loaded", "path", path)
	}
	return p.Timeline.Clone(), nil
}

func (s *Service) checkSourceBounds(ctx context.Context, mediaRef string, trimEnd float64) error {
	if s.media == nil {
		return nil
	}
	info, err := s.media.Resolve(ctx, mediaRef)
	if err != nil {
		return fmt.Errorf("media %s: %w", mediaRef, ErrMediaUnavailable)
	}
	if trimEnd > info.Duration {
		return fmt.Errorf("trim end %v exceeds source duration %v: %w", trimEnd, info.Duration, ErrInvalidBounds)
	}
	return nil
}
