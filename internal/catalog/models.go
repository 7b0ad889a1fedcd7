package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Category classifies a video for filtering.
type Category string

const (
	CategoryPublic   Category = "public"
	CategoryPrivate  Category = "private"
	CategoryTicket   Category = "ticket"
	CategoryPassword Category = "password"
	CategorySpecial  Category = "special"
	CategoryClip     Category = "clip"
	CategoryOther    Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryPublic,
	CategoryPrivate,
	CategoryTicket,
	CategoryPassword,
	CategorySpecial,
	CategoryClip,
	CategoryOther,
}

// ParseCategory validates a category name, ignoring case.
func ParseCategory(value string) (Category, error) {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, c := range Categories {
		if c == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, value)
}

const (
	MinRating = 0
	MaxRating = 5
)

// ValidateRating returns ErrInvalidRating when rating is outside [0,5].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	return nil
}

var supportedExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".avi":  {},
	".mov":  {},
	".flv":  {},
	".wmv":  {},
	".webm": {},
}

// IsSupported reports whether path has a supported video extension.
func IsSupported(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Video is a cataloged video file.
type Video struct {
	ID        int64     `json:"id" yaml:"id"`
	Path      string    `json:"path" yaml:"path"`
	Filename  string    `json:"filename" yaml:"filename"`
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	Duration  string    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Category  Category  `json:"category" yaml:"category"`
	Rating    int       `json:"rating" yaml:"rating"`
	Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Thumbnail []byte    `json:"-" yaml:"-"`
	AddedDate time.Time `json:"addedDate" yaml:"addedDate"`
}

// DisplayTitle returns the title, falling back to the filename.
func (v Video) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return v.Filename
}

// VideoUpdate carries the user-editable fields. Nil fields are unchanged.
type VideoUpdate struct {
	Category *Category
	Rating   *int
	Notes    *string
}

// Empty reports whether the update changes nothing.
func (u VideoUpdate) Empty() bool {
	return u.Category == nil && u.Rating == nil && u.Notes == nil
}

// Enrichment carries derived fields. Empty fields are ignored.
type Enrichment struct {
	Title     string
	Duration  string
	Thumbnail []byte
}

// SortKey selects the ListAll ordering.
type SortKey string

const (
	SortFilename SortKey = "filename"
	SortTitle    SortKey = "title"
	SortDuration SortKey = "duration"
	SortCategory SortKey = "category"
	SortRating   SortKey = "rating"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(value string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(value))); key {
	case SortFilename, SortTitle, SortDuration, SortCategory, SortRating:
		return key, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortKey, value)
	}
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder validates a sort order; empty means ascending.
func ParseSortOrder(value string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(value))); order {
	case "", Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortOrder, value)
	}
}

// SearchMode selects which columns Search matches.
type SearchMode string

const (
	SearchAll           SearchMode = "all"
	SearchTitleFilename SearchMode = "title_filename"
	SearchFilename      SearchMode = "filename"
	SearchTitle         SearchMode = "title"
	SearchNotes         SearchMode = "notes"
)

// ParseSearchMode validates a search mode; empty means all.
func ParseSearchMode(value string) (SearchMode, error) {
	switch mode := SearchMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return SearchAll, nil
	case SearchAll, SearchTitleFilename, SearchFilename, SearchTitle, SearchNotes:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSearchMode, value)
	}
}

// SearchQuery filters Search results. Zero values match everything.
type SearchQuery struct {
	Text      string
	Mode      SearchMode
	Category  Category
	MinRating int
}
