package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/reelcut/reelcut-engine/internal/logging"
	"github.com/reelcut/reelcut-engine/internal/media"
)

// Streamer serves a catalog entry's bytes over HTTP.
type Streamer interface {
	ServeMedia(w http.ResponseWriter, r *http.Request, file *media.File) error
}

type Server struct {
	logger *slog.Logger
}

func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{logger: logger}
}

// ServeMedia streams the file behind a catalog entry, honoring a single
// Range header. Files the presence checker has marked missing are reported
// as gone rather than opened.
func (s *Server) ServeMedia(w http.ResponseWriter, r *http.Request, file *media.File) error {
	if !file.Present {
		http.Error(w, "media file is offline", http.StatusGone)
		return nil
	}

	f, err := os.Open(file.Path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	size := stat.Size()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentTypeFor(file))

	br, err := ParseRange(r.Header.Get("Range"), size)
	if errors.Is(err, ErrUnsatisfiable) {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}
	// A malformed Range header falls back to serving the whole file.
	if err != nil && !errors.Is(err, ErrInvalidRange) {
		return err
	}

	if br == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			io.Copy(w, f)
		}
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", br.Length()))
	w.Header().Set("Content-Range", br.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := f.Seek(br.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	io.CopyN(w, f, br.Length())

	logging.WithMediaID(s.logger, file.ID).Debug("served media range",
		"start", br.Start, "length", br.Length())
	return nil
}

func contentTypeFor(file *media.File) string {
	if ct := mime.TypeByExtension(filepath.Ext(file.Path)); ct != "" {
		return ct
	}
	switch file.Kind {
	case media.KindVideo:
		return "video/mp4"
	case media.KindAudio:
		return "audio/mpeg"
	case media.KindImage:
		return "image/jpeg"
	}
	return "application/octet-stream"
}
