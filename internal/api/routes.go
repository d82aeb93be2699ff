package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reelcut/reelcut-engine/internal/config"
	"github.com/reelcut/reelcut-engine/internal/export"
	"github.com/reelcut/reelcut-engine/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Post("/timelines", createTimelineHandler(cfg))
		r.Get("/timelines", listTimelinesHandler(cfg))
		r.Post("/timelines/load", loadProjectHandler(cfg))
		r.Get("/timelines/{id}", getTimelineHandler(cfg))
		r.Delete("/timelines/{id}", deleteTimelineHandler(cfg))
		r.Post("/timelines/{id}/save", saveProjectHandler(cfg))
		r.Post("/timelines/{id}/export", exportHandler(cfg))
		r.Get("/timelines/{id}/clips-at", clipsAtHandler(cfg))

		r.Post("/timelines/{id}/tracks", addTrackHandler(cfg))
		r.Patch("/timelines/{id}/tracks/{trackID}", updateTrackHandler(cfg))
		r.Delete("/timelines/{id}/tracks/{trackID}", removeTrackHandler(cfg))

		r.Post("/timelines/{id}/clips", addClipHandler(cfg))
		r.Delete("/timelines/{id}/clips/{clipID}", removeClipHandler(cfg))
		r.Post("/timelines/{id}/clips/{clipID}/move", moveClipHandler(cfg))
		r.Post("/timelines/{id}/clips/{clipID}/trim", trimClipHandler(cfg))
		r.Post("/timelines/{id}/clips/{clipID}/split", splitClipHandler(cfg))

		r.Post("/media/import", importMediaHandler(cfg))
		r.Get("/media", listMediaHandler(cfg))
		r.Get("/media/{id}", getMediaHandler(cfg))
		r.Delete("/media/{id}", deleteMediaHandler(cfg))
		r.Get("/media/{id}/stream", streamMediaHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaCount := 0
		if cfg.Media != nil {
			mediaCount, _ = cfg.Media.Count(r.Context())
		}
		WriteJSON(w, http.StatusOK, StatusResponse{
			TimelinesCount: len(cfg.Timelines.List()),
			MediaCount:     mediaCount,
		})
	}
}

func createTimelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTimelineRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}
		if req.Framerate == 0 {
			req.Framerate = 30.0
		}
		if req.Width == 0 || req.Height == 0 {
			req.Width, req.Height = 1920, 1080
		}

		t, err := cfg.Timelines.Create(req.Name, req.Framerate,
			timeline.Resolution{Width: req.Width, Height: req.Height})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, t)
	}
}

func listTimelinesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, TimelinesResponse{Timelines: cfg.Timelines.List()})
	}
}

func getTimelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := cfg.Timelines.Snapshot(chi.URLParam(r, "id"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	}
}

func deleteTimelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Timelines.Delete(chi.URLParam(r, "id")); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddTrackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		trackType, ok := timeline.ParseTrackType(req.Type)
		if !ok {
			WriteError(w, http.StatusBadRequest, "type must be video, audio or overlay", "BAD_REQUEST")
			return
		}

		track, err := cfg.Timelines.AddTrack(chi.URLParam(r, "id"), trackType)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, track)
	}
}

func updateTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateTrackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Muted == nil && req.Locked == nil {
			WriteError(w, http.StatusBadRequest, "nothing to update", "BAD_REQUEST")
			return
		}

		timelineID := chi.URLParam(r, "id")
		trackID := chi.URLParam(r, "trackID")

		if req.Muted != nil {
			if err := cfg.Timelines.SetTrackMuted(timelineID, trackID, *req.Muted); err != nil {
				writeEngineError(w, err)
				return
			}
		}
		if req.Locked != nil {
			if err := cfg.Timelines.SetTrackLocked(timelineID, trackID, *req.Locked); err != nil {
				writeEngineError(w, err)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func removeTrackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Timelines.RemoveTrack(chi.URLParam(r, "id"), chi.URLParam(r, "trackID")); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.MediaRef == "" || req.TrackID == "" {
			WriteError(w, http.StatusBadRequest, "media_ref and track_id are required", "BAD_REQUEST")
			return
		}

		clip, err := cfg.Timelines.AddClip(r.Context(), chi.URLParam(r, "id"), timeline.AddClipParams{
			MediaRef:  req.MediaRef,
			TrackID:   req.TrackID,
			Name:      req.Name,
			Position:  req.Position,
			TrimStart: req.TrimStart,
			TrimEnd:   req.TrimEnd,
			Speed:     req.Speed,
			Volume:    req.Volume,
		})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, clip)
	}
}

func removeClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Timelines.RemoveClip(chi.URLParam(r, "id"), chi.URLParam(r, "clipID")); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func moveClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MoveClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.TrackID == "" {
			WriteError(w, http.StatusBadRequest, "track_id is required", "BAD_REQUEST")
			return
		}

		timelineID := chi.URLParam(r, "id")
		if err := cfg.Timelines.MoveClip(timelineID, chi.URLParam(r, "clipID"), req.TrackID, req.Position); err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func trimClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TrimClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		timelineID := chi.URLParam(r, "id")
		err := cfg.Timelines.TrimClip(r.Context(), timelineID, chi.URLParam(r, "clipID"), req.TrimStart, req.TrimEnd)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func splitClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SplitClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		first, second, err := cfg.Timelines.SplitClip(chi.URLParam(r, "id"), chi.URLParam(r, "clipID"), req.Time)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SplitClipResponse{First: first, Second: second})
	}
}

func clipsAtHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var at float64
		if raw := r.URL.Query().Get("t"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed < 0 {
				WriteError(w, http.StatusBadRequest, "t must be a non-negative number of seconds", "BAD_REQUEST")
				return
			}
			at = parsed
		}

		clips, err := cfg.Timelines.ClipsAt(chi.URLParam(r, "id"), at)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ClipsAtResponse{Time: at, Clips: activeClipsToResponse(clips)})
	}
}

func saveProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveProjectRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
				return
			}
		}

		timelineID := chi.URLParam(r, "id")
		path := req.Path
		if path == "" {
			snap, err := cfg.Timelines.Snapshot(timelineID)
			if err != nil {
				writeEngineError(w, err)
				return
			}
			name := export.SafeName(snap.Name, 120)
			if name == "" {
				name = timelineID
			}
			path = filepath.Join(cfg.ProjectsDir, name+".json")
		}

		if err := cfg.Timelines.SaveProject(timelineID, path); err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SaveProjectResponse{Path: path})
	}
}

func loadProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoadProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		t, err := cfg.Timelines.LoadProject(req.Path)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, t)
	}
}
