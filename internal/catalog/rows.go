package catalog

import (
	"database/sql"
	"errors"
	"time"
)

const videoColumns = "id, filename, path, title, duration, category, rating, notes, thumbnail, added_date"

type videoRow struct {
	ID        int64          `db:"id"`
	Filename  string         `db:"filename"`
	Path      string         `db:"path"`
	Title     sql.NullString `db:"title"`
	Duration  sql.NullString `db:"duration"`
	Category  string         `db:"category"`
	Rating    int            `db:"rating"`
	Notes     sql.NullString `db:"notes"`
	Thumbnail []byte         `db:"thumbnail"`
	AddedDate string         `db:"added_date"`
}

func (r videoRow) toVideo() Video {
	video := Video{
		ID:        r.ID,
		Path:      r.Path,
		Filename:  r.Filename,
		Title:     r.Title.String,
		Duration:  r.Duration.String,
		Category:  Category(r.Category),
		Rating:    r.Rating,
		Notes:     r.Notes.String,
		Thumbnail: r.Thumbnail,
	}
	if added, err := parseTimeString(r.AddedDate); err == nil {
		video.AddedDate = added
	}
	return video
}

func nullableBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
