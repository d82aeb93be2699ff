// Package media is the engine's catalog of imported source files. The
// timeline stores only references into this catalog; the catalog owns paths,
// durations, and dedupe hashes.
package media

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	KindVideo = "video"
	KindAudio = "audio"
	KindImage = "image"
)

type File struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Filename   string    `json:"filename"`
	Kind       string    `json:"kind"`
	Duration   float64   `json:"duration"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	VideoCodec string    `json:"video_codec,omitempty"`
	AudioCodec string    `json:"audio_codec,omitempty"`
	Size       int64     `json:"size"`
	Hash       string    `json:"hash"`
	Present    bool      `json:"present"`
	ImportedAt time.Time `json:"imported_at"`
}

var kindByExtension = map[string]string{
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".mkv":  KindVideo,
	".webm": KindVideo,
	".avi":  KindVideo,
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".aac":  KindAudio,
	".flac": KindAudio,
	".ogg":  KindAudio,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".webp": KindImage,
}

// KindForPath classifies a file by extension, defaulting to video for
// unknown extensions so odd container names still import.
func KindForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := kindByExtension[ext]; ok {
		return kind
	}
	return KindVideo
}
