package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/reelcut/reelcut-engine/internal/logging"
	"github.com/reelcut/reelcut-engine/internal/timeline"
)

// hashSize bounds how much of a file feeds the dedupe hash. Hashing the head
// is enough to spot re-imports without reading multi-gigabyte sources.
const hashSize = 256 * 1024

type Service struct {
	repo   Repository
	probe  Prober
	logger *slog.Logger
}

// NewService wires the catalog. probe may be nil when no ffprobe binary is
// available; imports then rely on caller-supplied durations.
func NewService(repo Repository, probe Prober, logger *slog.Logger) *Service {
	return &Service{repo: repo, probe: probe, logger: logger}
}

// ImportParams describe a file to bring into the catalog. Duration is a
// fallback for when probing is unavailable (e.g. still images, or no
// ffprobe on PATH).
type ImportParams struct {
	Path     string
	Duration float64
}

// Import adds a file to the catalog, deduplicating by content hash and size:
// importing the same file twice returns the existing entry.
func (s *Service) Import(ctx context.Context, p ImportParams) (*File, error) {
	absPath, err := filepath.Abs(p.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("file does not exist: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory")
	}

	hash, err := hashFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("hash file: %w", err)
	}

	existing, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Size == info.Size() {
		if s.logger != nil {
			logging.WithMediaID(s.logger, existing.ID).Info("file already in catalog", "path", absPath)
		}
		return existing, nil
	}

	file := &File{
		ID:         uuid.NewString(),
		Path:       absPath,
		Filename:   filepath.Base(absPath),
		Kind:       KindForPath(absPath),
		Duration:   p.Duration,
		Size:       info.Size(),
		Hash:       hash,
		Present:    true,
		ImportedAt: time.Now().UTC(),
	}

	if s.probe != nil {
		meta, err := s.probe.Probe(ctx, absPath)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("probe failed, keeping caller-supplied metadata", "path", absPath, "error", err)
			}
		} else {
			file.Duration = meta.Duration
			file.Width = meta.Width
			file.Height = meta.Height
			file.VideoCodec = meta.VideoCodec
			file.AudioCodec = meta.AudioCodec
		}
	}

	if err := s.repo.Create(ctx, file); err != nil {
		return nil, err
	}

	if s.logger != nil {
		logging.WithMediaID(s.logger, file.ID).Info("file imported", "path", absPath,
			"kind", file.Kind, "duration", file.Duration)
	}
	return file, nil
}

func (s *Service) Get(ctx context.Context, id string) (*File, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*File, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Resolve implements timeline.MediaResolver: the timeline service consults
// it to validate trim bounds. Unknown ids and files marked absent surface as
// ErrMediaUnavailable; the timeline data referencing them stays intact.
func (s *Service) Resolve(ctx context.Context, mediaRef string) (*timeline.MediaInfo, error) {
	file, err := s.repo.Get(ctx, mediaRef)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("media %s: %w", mediaRef, timeline.ErrMediaUnavailable)
	}
	if !file.Present {
		return nil, fmt.Errorf("media %s is offline: %w", mediaRef, timeline.ErrMediaUnavailable)
	}
	return &timeline.MediaInfo{Duration: file.Duration, Kind: file.Kind}, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, io.LimitReader(f, hashSize)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
