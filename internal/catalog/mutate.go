package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"videomanager/internal/logging"
)

func getForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (videoRow, error) {
	var row videoRow
	err := tx.GetContext(ctx, &row, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return row, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return row, fmt.Errorf("get video: %w", err)
	}
	return row, nil
}

// Update applies the non-nil fields of u to video id. Path, filename, and
// addedDate cannot change.
func (s *Store) Update(ctx context.Context, id int64, u VideoUpdate) (*Video, error) {
	ctx = ensureContext(ctx)
	if u.Rating != nil {
		if err := ValidateRating(*u.Rating); err != nil {
			return nil, err
		}
	}
	var category Category
	if u.Category != nil {
		parsed, err := ParseCategory(string(*u.Category))
		if err != nil {
			return nil, err
		}
		category = parsed
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		row, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if u.Category != nil {
			row.Category = string(category)
		}
		if u.Rating != nil {
			row.Rating = *u.Rating
		}
		if u.Notes != nil {
			row.Notes = sql.NullString{String: *u.Notes, Valid: *u.Notes != ""}
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE videos SET category = ?, rating = ?, notes = ? WHERE id = ?`,
			row.Category, row.Rating, row.Notes, id,
		); err != nil {
			return fmt.Errorf("update video: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("video updated", logging.Int64(logging.FieldVideoID, id))
	return s.Get(ctx, id)
}

// Delete removes video id permanently.
func (s *Store) Delete(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete video: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("video deleted", logging.Int64(logging.FieldVideoID, id))
	return nil
}

// Enrich fills title, duration, and thumbnail from e where the record has
// none yet. Populated fields are never overwritten.
func (s *Store) Enrich(ctx context.Context, id int64, e Enrichment) (*Video, error) {
	ctx = ensureContext(ctx)
	changed := false
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		row, err := getForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if row.Title.String == "" && e.Title != "" {
			row.Title = sql.NullString{String: e.Title, Valid: true}
			changed = true
		}
		if row.Duration.String == "" && e.Duration != "" {
			row.Duration = sql.NullString{String: e.Duration, Valid: true}
			changed = true
		}
		if len(row.Thumbnail) == 0 && len(e.Thumbnail) > 0 {
			row.Thumbnail = e.Thumbnail
			changed = true
		}
		if !changed {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE videos SET title = ?, duration = ?, thumbnail = ? WHERE id = ?`,
			row.Title, row.Duration, nullableBytes(row.Thumbnail), id,
		); err != nil {
			return fmt.Errorf("enrich video: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Debug("video enriched", logging.Int64(logging.FieldVideoID, id))
	}
	return s.Get(ctx, id)
}
