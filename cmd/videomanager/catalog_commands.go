package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"videomanager/internal/catalog"
)

func newCatalogCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newAddCommand(ctx),
		newAddFolderCommand(ctx),
		newListCommand(ctx),
		newShowCommand(ctx),
		newEditCommand(ctx),
		newDeleteCommand(ctx),
		newSearchCommand(ctx),
		newStatsCommand(ctx),
	}
}

// probeEnabled resolves --probe against the catalog.probe_on_import default.
func (c *commandContext) probeEnabled(cmd *cobra.Command, flagValue bool) (bool, error) {
	if cmd.Flags().Changed("probe") {
		return flagValue, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return false, err
	}
	return cfg.Catalog.ProbeOnImport, nil
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var probe bool
	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Add video files to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			probeOn, err := ctx.probeEnabled(cmd, probe)
			if err != nil {
				return err
			}
			enricher, err := ctx.enricher(probeOn)
			if err != nil {
				return err
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				runCtx := ctx.runContext(cmd)
				out := cmd.OutOrStdout()
				errOut := cmd.ErrOrStderr()
				failed := 0
				for _, arg := range args {
					existing, err := store.FindByFilename(runCtx, filepath.Base(arg))
					if err != nil {
						return err
					}
					video, err := store.ImportFile(runCtx, arg)
					if err != nil {
						failed++
						fmt.Fprintf(errOut, "%s: %v\n", arg, err)
						continue
					}
					if len(existing) > 0 {
						fmt.Fprintf(errOut, "note: %d other video(s) named %q already cataloged\n", len(existing), video.Filename)
					}
					if enriched, err := store.EnrichVideo(runCtx, enricher, video); err == nil {
						video = enriched
					} else {
						fmt.Fprintf(errOut, "%s: enrich: %v\n", arg, err)
					}
					fmt.Fprintf(out, "Added #%d %s\n", video.ID, video.Path)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d file(s) not added", failed, len(args))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&probe, "probe", false, "Probe durations with ffprobe (default from catalog.probe_on_import)")
	return cmd
}

func newAddFolderCommand(ctx *commandContext) *cobra.Command {
	var probe, noRecursive bool
	cmd := &cobra.Command{
		Use:   "add-folder <dir>",
		Short: "Add every supported video under a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			recursive := cfg.Catalog.RecursiveImport
			if cmd.Flags().Changed("no-recursive") {
				recursive = !noRecursive
			}
			probeOn, err := ctx.probeEnabled(cmd, probe)
			if err != nil {
				return err
			}
			enricher, err := ctx.enricher(probeOn)
			if err != nil {
				return err
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				runCtx := ctx.runContext(cmd)
				results, err := store.ImportFolder(runCtx, args[0], recursive)
				if err != nil {
					return err
				}
				errOut := cmd.ErrOrStderr()
				for _, result := range results {
					switch {
					case result.Err == nil:
						if _, err := store.EnrichVideo(runCtx, enricher, result.Video); err != nil {
							fmt.Fprintf(errOut, "%s: enrich: %v\n", result.Path, err)
						}
					case errors.Is(result.Err, catalog.ErrDuplicatePath), errors.Is(result.Err, catalog.ErrUnsupportedFormat):
					default:
						fmt.Fprintf(errOut, "%s: %v\n", result.Path, result.Err)
					}
				}
				summary := catalog.Summarize(results)
				fmt.Fprintf(cmd.OutOrStdout(),
					"Imported %d, skipped %d (duplicates %d, unsupported %d, failed %d)\n",
					summary.Imported, summary.Skipped(), summary.Duplicates, summary.Unsupported, summary.Failed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "Only import files directly inside the folder")
	cmd.Flags().BoolVar(&probe, "probe", false, "Probe durations with ffprobe (default from catalog.probe_on_import)")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	var sortKey, category string
	var desc bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			order := catalog.Ascending
			if desc {
				order = catalog.Descending
			}
			var filter catalog.Category
			if strings.TrimSpace(category) != "" {
				filter, err = catalog.ParseCategory(category)
				if err != nil {
					return err
				}
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				videos, err := store.ListAll(ctx.runContext(cmd), catalog.SortKey(sortKey), order)
				if err != nil {
					return err
				}
				if filter != "" {
					kept := videos[:0]
					for _, v := range videos {
						if v.Category == filter {
							kept = append(kept, v)
						}
					}
					videos = kept
				}
				if ok, err := writeStructured(cmd, format, videos); ok {
					return err
				}
				printVideos(cmd.OutOrStdout(), videos)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&sortKey, "sort", "s", string(catalog.SortFilename), "Sort by filename, title, duration, category, or rating")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&category, "category", "", "Only list videos in this category")
	out.register(cmd)
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				video, err := store.Get(ctx.runContext(cmd), id)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, video); ok {
					return err
				}
				printVideo(cmd.OutOrStdout(), video)
				return nil
			})
		},
	}
	out.register(cmd)
	return cmd
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var category, notes string
	var rating int
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the category, rating, or notes of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			var update catalog.VideoUpdate
			if cmd.Flags().Changed("category") {
				c := catalog.Category(category)
				update.Category = &c
			}
			if cmd.Flags().Changed("rating") {
				update.Rating = &rating
			}
			if cmd.Flags().Changed("notes") {
				update.Notes = &notes
			}
			if update.Empty() {
				return errors.New("nothing to change; pass --category, --rating, or --notes")
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				video, err := store.Update(ctx.runContext(cmd), id, update)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %s\n", video.ID, video.DisplayTitle())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().IntVar(&rating, "rating", 0, "New rating from 0 to 5")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes (empty clears them)")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a video from the catalog (the file is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				if err := store.Delete(ctx.runContext(cmd), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
				return nil
			})
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	var mode, category string
	var minRating int
	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Search the catalog",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			query := catalog.SearchQuery{
				Text:      strings.Join(args, " "),
				Mode:      catalog.SearchMode(mode),
				Category:  catalog.Category(strings.TrimSpace(category)),
				MinRating: minRating,
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				videos, err := store.Search(ctx.runContext(cmd), query)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, videos); ok {
					return err
				}
				printVideos(cmd.OutOrStdout(), videos)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(catalog.SearchAll), "Match all, title_filename, filename, title, or notes")
	cmd.Flags().StringVar(&category, "category", "", "Only match videos in this category")
	cmd.Flags().IntVar(&minRating, "min-rating", 0, "Only match videos rated at least this")
	out.register(cmd)
	return cmd
}

type catalogStats struct {
	Total      int                      `json:"total" yaml:"total"`
	Categories map[catalog.Category]int `json:"categories" yaml:"categories"`
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			return ctx.withCatalog(func(store *catalog.Store) error {
				runCtx := ctx.runContext(cmd)
				total, err := store.Count(runCtx)
				if err != nil {
					return err
				}
				counts, err := store.CountByCategory(runCtx)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, catalogStats{Total: total, Categories: counts}); ok {
					return err
				}
				title := cases.Title(language.English)
				rows := make([][]string, 0, len(catalog.Categories))
				for _, c := range catalog.Categories {
					rows = append(rows, []string{title.String(string(c)), strconv.Itoa(counts[c])})
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, renderTable(w, []string{"Category", "Videos"}, rows, []columnAlignment{alignLeft, alignRight}))
				fmt.Fprintf(w, "Total: %d\n", total)
				return nil
			})
		},
	}
	out.register(cmd)
	return cmd
}

func parseVideoID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid video id %q", value)
	}
	return id, nil
}

func formatRating(rating int) string {
	if rating <= 0 {
		return "-"
	}
	return strings.Repeat("*", rating)
}

func printVideos(w io.Writer, videos []catalog.Video) {
	if len(videos) == 0 {
		fmt.Fprintln(w, "No videos")
		return
	}
	rows := make([][]string, 0, len(videos))
	for _, v := range videos {
		rows = append(rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.DisplayTitle(),
			v.Filename,
			valueOrDash(v.Duration),
			string(v.Category),
			formatRating(v.Rating),
		})
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"ID", "Title", "Filename", "Duration", "Category", "Rating"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintf(w, "%d video(s)\n", len(videos))
}

func printVideo(w io.Writer, v *catalog.Video) {
	fmt.Fprintf(w, "ID:       %d\n", v.ID)
	fmt.Fprintf(w, "Title:    %s\n", v.DisplayTitle())
	fmt.Fprintf(w, "Filename: %s\n", v.Filename)
	fmt.Fprintf(w, "Path:     %s\n", v.Path)
	fmt.Fprintf(w, "Duration: %s\n", valueOrDash(v.Duration))
	fmt.Fprintf(w, "Category: %s\n", v.Category)
	fmt.Fprintf(w, "Rating:   %d/%d\n", v.Rating, catalog.MaxRating)
	fmt.Fprintf(w, "Notes:    %s\n", valueOrDash(v.Notes))
	fmt.Fprintf(w, "Added:    %s\n", v.AddedDate.Local().Format(time.DateTime))
}
