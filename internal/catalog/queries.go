package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"videomanager/internal/media/ffprobe"
)

// Get returns the video with id.
func (s *Store) Get(ctx context.Context, id int64) (*Video, error) {
	ctx = ensureContext(ctx)
	var row videoRow
	err := s.db.GetContext(ctx, &row, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	video := row.toVideo()
	return &video, nil
}

func (s *Store) selectVideos(ctx context.Context, query string, args ...any) ([]Video, error) {
	var rows []videoRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	videos := make([]Video, 0, len(rows))
	for _, row := range rows {
		videos = append(videos, row.toVideo())
	}
	return videos, nil
}

// ListAll returns every video ordered by key. The sort is stable over
// insertion order, so ties keep the order in which videos were added.
// Videos without a duration sort as zero length.
func (s *Store) ListAll(ctx context.Context, key SortKey, order SortOrder) ([]Video, error) {
	ctx = ensureContext(ctx)
	key, err := ParseSortKey(string(key))
	if err != nil {
		return nil, err
	}
	order, err = ParseSortOrder(string(order))
	if err != nil {
		return nil, err
	}

	videos, err := s.selectVideos(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	compare := comparator(key)
	sort.SliceStable(videos, func(i, j int) bool {
		c := compare(videos[i], videos[j])
		if order == Descending {
			return c > 0
		}
		return c < 0
	})
	return videos, nil
}

func comparator(key SortKey) func(a, b Video) int {
	switch key {
	case SortTitle:
		return func(a, b Video) int { return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)) }
	case SortDuration:
		return func(a, b Video) int { return compareInt64(durationSeconds(a.Duration), durationSeconds(b.Duration)) }
	case SortCategory:
		return func(a, b Video) int { return strings.Compare(string(a.Category), string(b.Category)) }
	case SortRating:
		return func(a, b Video) int { return compareInt64(int64(a.Rating), int64(b.Rating)) }
	default:
		return func(a, b Video) int {
			return strings.Compare(strings.ToLower(a.Filename), strings.ToLower(b.Filename))
		}
	}
}

func durationSeconds(value string) int64 {
	seconds, err := ffprobe.ParseClock(value)
	if err != nil {
		return 0
	}
	return seconds
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns videos matching q, ordered by title then id. Text matching
// is a case-insensitive substring match over the columns selected by Mode.
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]Video, error) {
	ctx = ensureContext(ctx)
	mode, err := ParseSearchMode(string(q.Mode))
	if err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if text := strings.TrimSpace(q.Text); text != "" {
		pattern := "%" + likeEscaper.Replace(text) + "%"
		var columns []string
		switch mode {
		case SearchTitleFilename:
			columns = []string{"title", "filename"}
		case SearchFilename:
			columns = []string{"filename"}
		case SearchTitle:
			columns = []string{"title"}
		case SearchNotes:
			columns = []string{"notes"}
		default:
			columns = []string{"title", "filename", "notes", "category"}
		}
		clauses := make([]string, 0, len(columns))
		for _, column := range columns {
			clauses = append(clauses, column+` LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		where = append(where, "("+strings.Join(clauses, " OR ")+")")
	}
	if q.Category != "" {
		category, err := ParseCategory(string(q.Category))
		if err != nil {
			return nil, err
		}
		where = append(where, "category = ?")
		args = append(args, category)
	}
	if q.MinRating != 0 {
		if err := ValidateRating(q.MinRating); err != nil {
			return nil, err
		}
		where = append(where, "rating >= ?")
		args = append(args, q.MinRating)
	}

	query := `SELECT ` + videoColumns + ` FROM videos`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY title COLLATE NOCASE ASC, id ASC`

	videos, err := s.selectVideos(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}
	return videos, nil
}

// FindByFilename returns every video whose base name is filename, in id order.
func (s *Store) FindByFilename(ctx context.Context, filename string) ([]Video, error) {
	ctx = ensureContext(ctx)
	videos, err := s.selectVideos(ctx, `SELECT `+videoColumns+` FROM videos WHERE filename = ? ORDER BY id`, filename)
	if err != nil {
		return nil, fmt.Errorf("find by filename: %w", err)
	}
	return videos, nil
}

// Count returns the number of cataloged videos.
func (s *Store) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(1) FROM videos`); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}

// CountByCategory returns video counts per category. Every category is
// present in the result, including empty ones.
func (s *Store) CountByCategory(ctx context.Context) (map[Category]int, error) {
	ctx = ensureContext(ctx)
	var rows []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT category, COUNT(1) AS count FROM videos GROUP BY category`); err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	for _, row := range rows {
		counts[Category(row.Category)] = row.Count
	}
	return counts, nil
}
