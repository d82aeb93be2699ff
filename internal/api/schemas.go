package api

import (
	"github.com/reelcut/reelcut-engine/internal/media"
	"github.com/reelcut/reelcut-engine/internal/timeline"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	TimelinesCount int `json:"timelines_count"`
	MediaCount     int `json:"media_count"`
}

type CreateTimelineRequest struct {
	Name      string  `json:"name"`
	Framerate float64 `json:"framerate"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
}

type TimelinesResponse struct {
	Timelines []*timeline.Timeline `json:"timelines"`
}

type AddTrackRequest struct {
	Type string `json:"type"`
}

type UpdateTrackRequest struct {
	Muted  *bool `json:"muted,omitempty"`
	Locked *bool `json:"locked,omitempty"`
}

type AddClipRequest struct {
	MediaRef  string   `json:"media_ref"`
	TrackID   string   `json:"track_id"`
	Name      string   `json:"name,omitempty"`
	Position  float64  `json:"position"`
	TrimStart float64  `json:"trim_start"`
	TrimEnd   float64  `json:"trim_end"`
	Speed     float64  `json:"speed,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
}

type MoveClipRequest struct {
	TrackID  string  `json:"track_id"`
	Position float64 `json:"position"`
}

type TrimClipRequest struct {
	TrimStart float64 `json:"trim_start"`
	TrimEnd   float64 `json:"trim_end"`
}

type SplitClipRequest struct {
	Time float64 `json:"time"`
}

type SplitClipResponse struct {
	First  *timeline.Clip `json:"first"`
	Second *timeline.Clip `json:"second"`
}

type ClipsAtResponse struct {
	Time  float64              `json:"time"`
	Clips []ActiveClipResponse `json:"clips"`
}

type ActiveClipResponse struct {
	TrackID   string         `json:"track_id"`
	TrackType string         `json:"track_type"`
	Clip      *timeline.Clip `json:"clip"`
}

type SaveProjectRequest struct {
	Path string `json:"path,omitempty"`
}

type SaveProjectResponse struct {
	Path string `json:"path"`
}

type LoadProjectRequest struct {
	Path string `json:"path"`
}

type ImportMediaRequest struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration,omitempty"`
}

type MediaListResponse struct {
	Media []*media.File `json:"media"`
}

type ExportRequest struct {
	Format    string `json:"format"`
	OutputDir string `json:"output_dir"`
	Name      string `json:"name,omitempty"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
	EventCount int    `json:"event_count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func activeClipsToResponse(clips []timeline.TrackClip) []ActiveClipResponse {
	out := make([]ActiveClipResponse, len(clips))
	for i, tc := range clips {
		out[i] = ActiveClipResponse{
			TrackID:   tc.Track.ID,
			TrackType: string(tc.Track.Type),
			Clip:      tc.Clip,
		}
	}
	return out
}
