package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"videomanager/internal/logging"
	"videomanager/internal/media/ffprobe"
)

// DurationProber reports the playing time of a media file.
type DurationProber interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Enricher derives catalog fields from a video file.
type Enricher struct {
	prober DurationProber
	logger *slog.Logger
}

// NewEnricher returns an Enricher. A nil prober derives only the title.
func NewEnricher(prober DurationProber, logger *slog.Logger) *Enricher {
	return &Enricher{prober: prober, logger: logging.NewComponentLogger(logger, "enrich")}
}

// Derive computes an Enrichment for path: the title is the file name without
// its extension, the duration comes from the prober as M:SS. A failed probe
// leaves the duration empty.
func (e *Enricher) Derive(ctx context.Context, path string) Enrichment {
	base := filepath.Base(path)
	out := Enrichment{Title: strings.TrimSuffix(base, filepath.Ext(base))}
	if e.prober == nil {
		return out
	}
	d, err := e.prober.Duration(ctx, path)
	if err != nil {
		logging.WarnWithContext(e.logger, "duration probe failed", "duration_probe_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ffprobe.binary in config and that the file is readable"),
			logging.String(logging.FieldImpact, "video cataloged without duration"),
		)
		return out
	}
	out.Duration = ffprobe.FormatDuration(d)
	return out
}

// EnrichVideo derives fields for v from its file and stores them.
func (s *Store) EnrichVideo(ctx context.Context, e *Enricher, v *Video) (*Video, error) {
	return s.Enrich(ctx, v.ID, e.Derive(ctx, v.Path))
}
