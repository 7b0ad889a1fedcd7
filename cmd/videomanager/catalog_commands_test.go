package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"videomanager/internal/catalog"
	"videomanager/internal/testsupport"
)

func listJSON(t *testing.T, env *cliTestEnv, args ...string) []catalog.Video {
	t.Helper()
	out := env.mustRun(t, append(args, "--json")...)
	var videos []catalog.Video
	if err := json.Unmarshal([]byte(out), &videos); err != nil {
		t.Fatalf("decode %s output: %v\n%s", args[0], err, out)
	}
	return videos
}

func TestAddDerivesTitleAndRejectsDuplicates(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFiles(t, env.videoDir, "Summer Trip.mp4")[0]

	out := env.mustRun(t, "add", path)
	requireContains(t, out, "Added #1 "+path)

	_, errOut, err := env.run(t, "add", path)
	if err == nil {
		t.Fatal("expected duplicate add to fail")
	}
	requireContains(t, errOut, "already cataloged")

	videos := listJSON(t, env, "list")
	if len(videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(videos))
	}
	if videos[0].Title != "Summer Trip" {
		t.Fatalf("expected derived title, got %q", videos[0].Title)
	}
	if videos[0].Duration != "" {
		t.Fatalf("expected no duration without probing, got %q", videos[0].Duration)
	}
}

func TestAddWithProbeStoresDuration(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFFprobeBinary(`{"streams":[],"format":{"duration":"65.0"}}`))
	path := testsupport.WriteFiles(t, env.videoDir, "probe.mkv")[0]

	env.mustRun(t, "add", "--probe", path)
	out := env.mustRun(t, "show", "1")
	requireContains(t, out, "Duration: 1:05")
}

func TestAddFolderProbesWhenConfigured(t *testing.T) {
	env := setupCLITestEnv(t,
		testsupport.WithProbeOnImport(true),
		testsupport.WithFFprobeBinary(`{"streams":[],"format":{"duration":"125.5"}}`),
	)
	testsupport.WriteFiles(t, env.videoDir, "a.mp4")

	env.mustRun(t, "add-folder", env.videoDir)
	requireContains(t, env.mustRun(t, "show", "1"), "Duration: 2:05")

	testsupport.WriteFiles(t, env.videoDir, "b.mp4")
	env.mustRun(t, "add", "--probe=false", filepath.Join(env.videoDir, "b.mp4"))
	requireNotContains(t, env.mustRun(t, "show", "2"), "Duration: 2:05")
}

func TestAddReportsUnsupportedFilesAndContinues(t *testing.T) {
	env := setupCLITestEnv(t)
	paths := testsupport.WriteFiles(t, env.videoDir, "notes.txt", "ok.webm")

	out, errOut, err := env.run(t, "add", paths[0], paths[1])
	if err == nil {
		t.Fatal("expected an error when one file is unsupported")
	}
	requireContains(t, err.Error(), "1 of 2")
	requireContains(t, errOut, "unsupported video format")
	requireContains(t, out, "ok.webm")
}

func TestAddFolderSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFiles(t, env.videoDir, "a.mp4", "b.mkv", "c.avi", "readme.txt", "cover.jpg", "sub/d.mov")

	out := env.mustRun(t, "add-folder", "--no-recursive", env.videoDir)
	requireContains(t, out, "Imported 3, skipped 2 (duplicates 0, unsupported 2, failed 0)")

	out = env.mustRun(t, "add-folder", env.videoDir)
	requireContains(t, out, "Imported 1, skipped 5 (duplicates 3, unsupported 2, failed 0)")

	out = env.mustRun(t, "stats")
	requireContains(t, out, "Total: 4")
	requireContains(t, out, "Public")
}

func TestEditShowDelete(t *testing.T) {
	env := setupCLITestEnv(t)
	path := testsupport.WriteFiles(t, env.videoDir, "edit-me.mp4")[0]
	env.mustRun(t, "add", path)

	env.mustRun(t, "edit", "1", "--category", "Clip", "--rating", "4", "--notes", "keeper")
	out := env.mustRun(t, "show", "1")
	requireContains(t, out, "Category: clip")
	requireContains(t, out, "Rating:   4/5")
	requireContains(t, out, "Notes:    keeper")

	if _, _, err := env.run(t, "edit", "1", "--rating", "6"); err == nil {
		t.Fatal("expected rating 6 to be rejected")
	}
	if _, _, err := env.run(t, "edit", "1"); err == nil {
		t.Fatal("expected edit without flags to fail")
	}
	out = env.mustRun(t, "show", "1")
	requireContains(t, out, "Rating:   4/5")

	if _, _, err := env.run(t, "delete", "42"); err == nil {
		t.Fatal("expected delete of unknown id to fail")
	}
	if got := len(listJSON(t, env, "list")); got != 1 {
		t.Fatalf("expected count unchanged after failed delete, got %d", got)
	}

	out = env.mustRun(t, "delete", "1")
	requireContains(t, out, "Deleted #1")
	out = env.mustRun(t, "list")
	requireContains(t, out, "No videos")

	if _, _, err := env.run(t, "show", "abc"); err == nil {
		t.Fatal("expected non-numeric id to fail")
	}
}

func TestListSortAndSearch(t *testing.T) {
	env := setupCLITestEnv(t)
	paths := testsupport.WriteFiles(t, env.videoDir, "beta.mp4", "alpha.mp4", "gamma.mp4")
	env.mustRun(t, append([]string{"add"}, paths...)...)
	env.mustRun(t, "edit", "1", "--rating", "2")
	env.mustRun(t, "edit", "2", "--rating", "5", "--category", "special")
	env.mustRun(t, "edit", "3", "--rating", "3", "--notes", "alpha take")

	names := func(videos []catalog.Video) string {
		out := make([]string, 0, len(videos))
		for _, v := range videos {
			out = append(out, v.Filename)
		}
		return strings.Join(out, ",")
	}

	if got := names(listJSON(t, env, "list")); got != "alpha.mp4,beta.mp4,gamma.mp4" {
		t.Fatalf("unexpected default order %s", got)
	}
	if got := names(listJSON(t, env, "list", "--sort", "rating", "--desc")); got != "alpha.mp4,gamma.mp4,beta.mp4" {
		t.Fatalf("unexpected rating order %s", got)
	}
	if got := names(listJSON(t, env, "list", "--category", "special")); got != "alpha.mp4" {
		t.Fatalf("unexpected category filter %s", got)
	}
	if _, _, err := env.run(t, "list", "--sort", "added"); err == nil {
		t.Fatal("expected unknown sort key to fail")
	}

	if got := names(listJSON(t, env, "search", "alpha")); got != "alpha.mp4,gamma.mp4" {
		t.Fatalf("unexpected search result %s", got)
	}
	if got := names(listJSON(t, env, "search", "alpha", "--mode", "filename")); got != "alpha.mp4" {
		t.Fatalf("unexpected filename search %s", got)
	}
	if got := names(listJSON(t, env, "search", "--min-rating", "3")); got != "alpha.mp4,gamma.mp4" {
		t.Fatalf("unexpected rating search %s", got)
	}

	out := env.mustRun(t, "list")
	requireContains(t, out, "3 video(s)")
	requireNotContains(t, out, filepath.Dir(paths[0]))
}
