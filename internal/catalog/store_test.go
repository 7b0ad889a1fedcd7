package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videomanager/internal/catalog"
	"videomanager/internal/logging"
	"videomanager/internal/testsupport"
)

var fixedNow = time.Date(2025, 10, 18, 9, 15, 0, 0, time.UTC)

func openCatalog(t *testing.T) (*catalog.Store, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg,
		catalog.WithLogger(logging.NewNop()),
		catalog.WithClock(func() time.Time { return fixedNow }),
	)
	return store, filepath.Join(testsupport.BaseDir(cfg), "videos")
}

func count(t *testing.T, store *catalog.Store) int {
	t.Helper()
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestImportFileSetsDefaults(t *testing.T) {
	store, dir := openCatalog(t)
	path := testsupport.WriteFiles(t, dir, "Holiday 2024.mp4")[0]

	video, err := store.ImportFile(context.Background(), path)
	require.NoError(t, err)

	assert.Positive(t, video.ID)
	assert.Equal(t, path, video.Path)
	assert.Equal(t, "Holiday 2024.mp4", video.Filename)
	assert.Empty(t, video.Title)
	assert.Empty(t, video.Duration)
	assert.Empty(t, video.Thumbnail)
	assert.Equal(t, catalog.CategoryPublic, video.Category)
	assert.Equal(t, 0, video.Rating)
	assert.True(t, fixedNow.Equal(video.AddedDate), "addedDate %v", video.AddedDate)
}

func TestImportFileTwiceKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	path := testsupport.WriteFiles(t, dir, "clip.mkv")[0]

	first, err := store.ImportFile(ctx, path)
	require.NoError(t, err)

	_, err = store.ImportFile(ctx, path)
	require.ErrorIs(t, err, catalog.ErrDuplicatePath)

	// The same file reached through a relative path is still a duplicate.
	t.Chdir(dir)
	_, err = store.ImportFile(ctx, "./clip.mkv")
	require.ErrorIs(t, err, catalog.ErrDuplicatePath)

	assert.Equal(t, 1, count(t, store))
	got, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Path, got.Path)
}

func TestImportFileValidation(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	paths := testsupport.WriteFiles(t, dir, "readme.txt", "UPPER.MKV", "noext")

	_, err := store.ImportFile(ctx, paths[0])
	require.ErrorIs(t, err, catalog.ErrUnsupportedFormat)

	_, err = store.ImportFile(ctx, paths[1])
	require.NoError(t, err)

	_, err = store.ImportFile(ctx, paths[2])
	require.ErrorIs(t, err, catalog.ErrUnsupportedFormat)

	_, err = store.ImportFile(ctx, filepath.Join(dir, "missing.mp4"))
	require.ErrorIs(t, err, catalog.ErrIO)

	testsupport.WriteFiles(t, dir, "folder.mp4/inner.txt")
	_, err = store.ImportFile(ctx, filepath.Join(dir, "folder.mp4"))
	require.ErrorIs(t, err, catalog.ErrIO)

	assert.Equal(t, 1, count(t, store))
}

func TestImportFolderReportsEveryFile(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	testsupport.WriteFiles(t, dir, "b.mp4", "a.webm", "c.AVI", "notes.txt", "cover.jpg")

	results, err := store.ImportFolder(ctx, dir, true)
	require.NoError(t, err)
	require.Len(t, results, 5)

	var imported, unsupported int
	for i, result := range results {
		if i > 0 {
			assert.Less(t, results[i-1].Path, result.Path)
		}
		switch {
		case result.Err == nil:
			imported++
			require.NotNil(t, result.Video)
		case errors.Is(result.Err, catalog.ErrUnsupportedFormat):
			unsupported++
		default:
			t.Fatalf("unexpected error for %s: %v", result.Path, result.Err)
		}
	}
	assert.Equal(t, 3, imported)
	assert.Equal(t, 2, unsupported)
	assert.Equal(t, 3, count(t, store))

	summary := catalog.Summarize(results)
	assert.Equal(t, catalog.ImportSummary{Imported: 3, Unsupported: 2}, summary)
	assert.Equal(t, 2, summary.Skipped())

	again, err := store.ImportFolder(ctx, dir, true)
	require.NoError(t, err)
	summary = catalog.Summarize(again)
	assert.Equal(t, 0, summary.Imported)
	assert.Equal(t, 3, summary.Duplicates)
	assert.Equal(t, 3, count(t, store))
}

func TestImportFolderRecursion(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	testsupport.WriteFiles(t, dir, "top.mp4", "season1/e01.mkv", "season1/extras/e01-behind.mov")

	results, err := store.ImportFolder(ctx, dir, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "top.mp4"), results[0].Path)

	results, err = store.ImportFolder(ctx, dir, true)
	require.NoError(t, err)
	summary := catalog.Summarize(results)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 3, count(t, store))
}

func TestImportFolderFollowsFileSymlinks(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	library := filepath.Join(dir, "library")
	testsupport.WriteFiles(t, library, "b.mp4")
	target := testsupport.WriteFiles(t, dir, "elsewhere/a.mp4")[0]
	require.NoError(t, os.Symlink(target, filepath.Join(library, "link.mp4")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone.mp4"), filepath.Join(library, "dangling.mp4")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "elsewhere"), filepath.Join(library, "shows")))

	results, err := store.ImportFolder(ctx, library, true)
	require.NoError(t, err)

	paths := make([]string, 0, len(results))
	for _, result := range results {
		paths = append(paths, filepath.Base(result.Path))
	}
	assert.Equal(t, []string{"b.mp4", "dangling.mp4", "link.mp4", "shows"}, paths)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, catalog.ErrIO)
	require.NoError(t, results[2].Err)
	assert.Equal(t, filepath.Join(library, "link.mp4"), results[2].Video.Path)
	assert.ErrorIs(t, results[3].Err, catalog.ErrIO)

	summary := catalog.Summarize(results)
	assert.Equal(t, catalog.ImportSummary{Imported: 2, Failed: 2}, summary)
	assert.Equal(t, 2, count(t, store))
}

func TestImportFolderRejectsMissingRoot(t *testing.T) {
	store, dir := openCatalog(t)
	_, err := store.ImportFolder(context.Background(), filepath.Join(dir, "absent"), true)
	require.ErrorIs(t, err, catalog.ErrIO)

	file := testsupport.WriteFiles(t, dir, "single.mp4")[0]
	_, err = store.ImportFolder(context.Background(), file, true)
	require.ErrorIs(t, err, catalog.ErrIO)
}

func TestUpdateRatingBoundaries(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	video := testsupport.MustImport(t, store, testsupport.WriteFiles(t, dir, "rated.mp4")[0])

	for _, rating := range []int{0, 5, 3} {
		r := rating
		updated, err := store.Update(ctx, video.ID, catalog.VideoUpdate{Rating: &r})
		require.NoError(t, err, "rating %d", rating)
		assert.Equal(t, rating, updated.Rating)
	}
	for _, rating := range []int{-1, 6} {
		r := rating
		_, err := store.Update(ctx, video.ID, catalog.VideoUpdate{Rating: &r})
		require.ErrorIs(t, err, catalog.ErrInvalidRating, "rating %d", rating)
	}

	got, err := store.Get(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rating)
}

func TestUpdateEditableFields(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	video := testsupport.MustImport(t, store, testsupport.WriteFiles(t, dir, "edit.mov")[0])

	category := catalog.Category("Clip")
	notes := "first pass"
	updated, err := store.Update(ctx, video.ID, catalog.VideoUpdate{Category: &category, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, catalog.CategoryClip, updated.Category)
	assert.Equal(t, "first pass", updated.Notes)
	assert.Equal(t, video.Path, updated.Path)
	assert.Equal(t, video.Filename, updated.Filename)
	assert.True(t, video.AddedDate.Equal(updated.AddedDate))

	rating := 4
	updated, err = store.Update(ctx, video.ID, catalog.VideoUpdate{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, catalog.CategoryClip, updated.Category)
	assert.Equal(t, "first pass", updated.Notes)

	cleared := ""
	updated, err = store.Update(ctx, video.ID, catalog.VideoUpdate{Notes: &cleared})
	require.NoError(t, err)
	assert.Empty(t, updated.Notes)

	bogus := catalog.Category("secret")
	_, err = store.Update(ctx, video.ID, catalog.VideoUpdate{Category: &bogus})
	require.ErrorIs(t, err, catalog.ErrInvalidCategory)

	_, err = store.Update(ctx, video.ID+100, catalog.VideoUpdate{Rating: &rating})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	paths := testsupport.WriteFiles(t, dir, "one.mp4", "two.mp4", "three.mp4")
	testsupport.MustImport(t, store, paths[0])
	second := testsupport.MustImport(t, store, paths[1])

	err := store.Delete(ctx, 9999)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, 2, count(t, store))

	require.NoError(t, store.Delete(ctx, second.ID))
	assert.Equal(t, 1, count(t, store))
	_, err = store.Get(ctx, second.ID)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	err = store.Delete(ctx, second.ID)
	require.ErrorIs(t, err, catalog.ErrNotFound)

	// Ids are never reused, and a deleted path can be imported again.
	third := testsupport.MustImport(t, store, paths[2])
	assert.Greater(t, third.ID, second.ID)
	again := testsupport.MustImport(t, store, paths[1])
	assert.Greater(t, again.ID, third.ID)
}

func TestEnrichFillsOnlyUnsetFields(t *testing.T) {
	ctx := context.Background()
	store, dir := openCatalog(t)
	video := testsupport.MustImport(t, store, testsupport.WriteFiles(t, dir, "trip.mp4")[0])

	enriched, err := store.Enrich(ctx, video.ID, catalog.Enrichment{Title: "trip", Duration: "3:07", Thumbnail: []byte{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "trip", enriched.Title)
	assert.Equal(t, "3:07", enriched.Duration)
	assert.Equal(t, []byte{1, 2, 3}, enriched.Thumbnail)

	enriched, err = store.Enrich(ctx, video.ID, catalog.Enrichment{Title: "other", Duration: "9:99"})
	require.NoError(t, err)
	assert.Equal(t, "trip", enriched.Title)
	assert.Equal(t, "3:07", enriched.Duration)

	_, err = store.Enrich(ctx, video.ID+1, catalog.Enrichment{Title: "x"})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	db, err := sqlx.Open("sqlite", cfg.Catalog.DatabasePath)
	require.NoError(t, err)
	_, err = db.Exec("UPDATE schema_version SET version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = catalog.Open(cfg)
	require.ErrorIs(t, err, catalog.ErrSchemaMismatch)
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := catalog.Open(cfg)
	require.NoError(t, err)
	path := testsupport.WriteFiles(t, filepath.Join(testsupport.BaseDir(cfg), "videos"), "keep.mp4")[0]
	testsupport.MustImport(t, store, path)
	require.NoError(t, store.Close())

	reopened := testsupport.MustOpenCatalog(t, cfg)
	assert.Equal(t, 1, count(t, reopened))
}
