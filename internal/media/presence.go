package media

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// PresenceChecker periodically stats cataloged files and flips their present
// flag when a drive disappears or comes back. Timelines referencing absent
// media keep working; only operations that need the media fail, with
// MediaUnavailable.
type PresenceChecker struct {
	repo     Repository
	interval time.Duration
	logger   *slog.Logger
}

func NewPresenceChecker(repo Repository, interval time.Duration, logger *slog.Logger) *PresenceChecker {
	return &PresenceChecker{repo: repo, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, checking on each tick.
func (p *PresenceChecker) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.checkAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.checkAll(ctx)
		}
	}
}

func (p *PresenceChecker) checkAll(ctx context.Context) {
	files, err := p.repo.List(ctx)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("presence check: list failed", "error", err)
		}
		return
	}

	for _, f := range files {
		_, statErr := os.Stat(f.Path)
		present := statErr == nil
		if present == f.Present {
			continue
		}
		if err := p.repo.UpdatePresent(ctx, f.ID, present); err != nil {
			if p.logger != nil {
				p.logger.Warn("presence check: update failed", "media_id", f.ID, "error", err)
			}
			continue
		}
		if p.logger != nil {
			p.logger.Info("media presence changed", "media_id", f.ID, "path", f.Path, "present", present)
		}
	}
}
