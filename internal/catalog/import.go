package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"videomanager/internal/logging"
)

// ImportResult is the outcome for one file found by ImportFolder.
type ImportResult struct {
	Path  string
	Video *Video
	Err   error
}

// ImportSummary tallies a batch of import results.
type ImportSummary struct {
	Imported    int
	Duplicates  int
	Unsupported int
	Failed      int
}

// Skipped counts every file that did not produce a record.
func (s ImportSummary) Skipped() int {
	return s.Duplicates + s.Unsupported + s.Failed
}

// Summarize counts results by outcome.
func Summarize(results []ImportResult) ImportSummary {
	var summary ImportSummary
	for _, result := range results {
		switch {
		case result.Err == nil:
			summary.Imported++
		case errors.Is(result.Err, ErrDuplicatePath):
			summary.Duplicates++
		case errors.Is(result.Err, ErrUnsupportedFormat):
			summary.Unsupported++
		default:
			summary.Failed++
		}
	}
	return summary
}

// ImportFile catalogs the video at path. The stored path is absolute and
// cleaned. Title, duration, and thumbnail stay unset until Enrich.
func (s *Store) ImportFile(ctx context.Context, path string) (*Video, error) {
	ctx = ensureContext(ctx)
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %w", ErrIO, path, err)
	}
	if !IsSupported(absPath) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(absPath))
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrIO, absPath)
	}

	added := s.now().UTC()
	var id int64
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		var existing int64
		err := tx.GetContext(ctx, &existing, `SELECT id FROM videos WHERE path = ?`, absPath)
		if err == nil {
			return fmt.Errorf("%w: %s (id %d)", ErrDuplicatePath, absPath, existing)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check duplicate: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO videos (filename, path, category, rating, added_date) VALUES (?, ?, ?, ?, ?)`,
			filepath.Base(absPath),
			absPath,
			CategoryPublic,
			MinRating,
			added.Format(time.RFC3339Nano),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicatePath, absPath)
			}
			return fmt.Errorf("insert video: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("video imported",
		logging.Int64(logging.FieldVideoID, id),
		logging.String(logging.FieldPath, absPath),
	)
	return s.Get(ctx, id)
}

// ImportFolder imports every regular file under root, in path order. When
// recursive is false only root's direct children are considered. A symlink
// to a regular file is imported like the file; any other link is reported
// with ErrIO and never walked. Failures for individual files are reported
// in the results and do not stop the batch; only an unreadable root fails
// the call.
func (s *Store) ImportFolder(ctx context.Context, root string, recursive bool) ([]ImportResult, error) {
	ctx = ensureContext(ctx)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %w", ErrIO, root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrIO, absRoot)
	}

	var (
		files   []string
		results []ImportResult
	)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == absRoot {
				return walkErr
			}
			results = append(results, ImportResult{Path: path, Err: fmt.Errorf("%w: %w", ErrIO, walkErr)})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != absRoot && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		switch {
		case d.Type().IsRegular():
			files = append(files, path)
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Stat(path)
			switch {
			case err != nil:
				results = append(results, ImportResult{Path: path, Err: fmt.Errorf("%w: %w", ErrIO, err)})
			case target.Mode().IsRegular():
				files = append(files, path)
			default:
				results = append(results, ImportResult{Path: path, Err: fmt.Errorf("%w: %s does not link to a regular file", ErrIO, path)})
			}
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", ErrIO, absRoot, walkErr)
	}
	sort.Strings(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		video, err := s.ImportFile(ctx, path)
		results = append(results, ImportResult{Path: path, Video: video, Err: err})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	summary := Summarize(results)
	s.logger.Info("folder import finished",
		logging.String(logging.FieldPath, absRoot),
		logging.Bool("recursive", recursive),
		logging.Int("imported", summary.Imported),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("unsupported", summary.Unsupported),
		logging.Int("failed", summary.Failed),
	)
	return results, nil
}
