package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"videomanager/internal/registry"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Inspect and update the module and database registries",
	}

	versionCmd.AddCommand(newVersionAllCommand(ctx))
	versionCmd.AddCommand(newVersionModulesCommand(ctx))
	versionCmd.AddCommand(newVersionDatabaseCommand(ctx))
	versionCmd.AddCommand(newVersionGetCommand(ctx))
	versionCmd.AddCommand(newVersionInitCommand(ctx))
	versionCmd.AddCommand(newVersionSetCommand(ctx))
	versionCmd.AddCommand(newVersionAddCommand(ctx))
	versionCmd.AddCommand(newVersionSchemaCommand(ctx))
	versionCmd.AddCommand(newVersionCheckCommand(ctx))

	return versionCmd
}

type registrySnapshot struct {
	Modules  *registry.ModuleRegistry   `json:"modules" yaml:"modules"`
	Database *registry.DatabaseRegistry `json:"database" yaml:"database"`
}

func newVersionAllCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Show module and database registries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			return ctx.withRegistry(func(store *registry.Store) error {
				runCtx := ctx.runContext(cmd)
				modules, err := store.ModulesDocument(runCtx)
				if err != nil {
					return err
				}
				database, err := store.DatabaseDocument(runCtx)
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, registrySnapshot{Modules: modules, Database: database}); ok {
					return err
				}
				w := cmd.OutOrStdout()
				printModules(w, modules)
				fmt.Fprintln(w)
				printDatabase(w, database)
				return nil
			})
		},
	}
	out.register(cmd)
	return cmd
}

func newVersionModulesCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Show the module registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			return ctx.withRegistry(func(store *registry.Store) error {
				doc, err := store.ModulesDocument(ctx.runContext(cmd))
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, doc); ok {
					return err
				}
				printModules(cmd.OutOrStdout(), doc)
				return nil
			})
		},
	}
	out.register(cmd)
	return cmd
}

func newVersionDatabaseCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "database",
		Short: "Show the database schema and migration log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			return ctx.withRegistry(func(store *registry.Store) error {
				doc, err := store.DatabaseDocument(ctx.runContext(cmd))
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, doc); ok {
					return err
				}
				printDatabase(cmd.OutOrStdout(), doc)
				return nil
			})
		},
	}
	out.register(cmd)
	return cmd
}

func newVersionGetCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "get <module>",
		Short: "Print the stable version of one module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			name := args[0]
			return ctx.withRegistry(func(store *registry.Store) error {
				entry, err := store.GetModule(ctx.runContext(cmd), name)
				if errors.Is(err, registry.ErrUnknownModule) {
					return fmt.Errorf("module %q not found", name)
				}
				if err != nil {
					return err
				}
				if ok, err := writeStructured(cmd, format, entry); ok {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, entry.Version)
				return nil
			})
		},
	}
	out.register(cmd)
	return cmd
}

func newVersionInitCommand(ctx *commandContext) *cobra.Command {
	var schemaVersion, description, status string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create missing registry documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(store *registry.Store) error {
				result, err := store.Init(ctx.runContext(cmd), registry.SchemaVersion{
					Version:     strings.TrimSpace(schemaVersion),
					Description: strings.TrimSpace(description),
					Status:      registry.SchemaStatus(status),
				})
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Module registry:   %s (%s)\n", store.ModulesPath(), createdLabel(result.ModulesCreated))
				fmt.Fprintf(w, "Database registry: %s (%s)\n", store.DatabasePath(), createdLabel(result.DatabaseCreated))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&schemaVersion, "schema-version", "", "Initial schema version (default 1.0.0)")
	cmd.Flags().StringVar(&description, "description", "", "Initial schema description")
	cmd.Flags().StringVar(&status, "status", "", "Initial schema status (stable or beta)")
	return cmd
}

func createdLabel(created bool) string {
	if created {
		return "created"
	}
	return "already present"
}

func newVersionSetCommand(ctx *commandContext) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "set <module> <version>",
		Short: "Bump an existing module to a new stable version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var statusPtr *registry.ModuleStatus
			if cmd.Flags().Changed("status") {
				s := registry.ModuleStatus(status)
				statusPtr = &s
			}
			return ctx.withRegistry(func(store *registry.Store) error {
				if err := store.SetModuleVersion(ctx.runContext(cmd), args[0], args[1], statusPtr); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], args[1])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "New module status (stable, beta, deprecated)")
	return cmd
}

func newVersionAddCommand(ctx *commandContext) *cobra.Command {
	var description, status, releaseDate string
	cmd := &cobra.Command{
		Use:   "add <module> <version>",
		Short: "Register a new module",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := registry.ModuleVersion{
				Version:     args[1],
				Description: strings.TrimSpace(description),
				Status:      registry.ModuleStatus(status),
				ReleaseDate: strings.TrimSpace(releaseDate),
			}
			return ctx.withRegistry(func(store *registry.Store) error {
				if err := store.AddModule(ctx.runContext(cmd), args[0], entry); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s %s\n", args[0], args[1])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Module description")
	cmd.Flags().StringVar(&status, "status", string(registry.ModuleStable), "Module status (stable, beta, deprecated)")
	cmd.Flags().StringVar(&releaseDate, "release-date", "", "Release date as YYYY-MM-DD (default today)")
	return cmd
}

func newVersionSchemaCommand(ctx *commandContext) *cobra.Command {
	var description, status string
	cmd := &cobra.Command{
		Use:   "schema <version>",
		Short: "Set the current database schema version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(store *registry.Store) error {
				err := store.SetSchemaVersion(ctx.runContext(cmd), args[0], strings.TrimSpace(description), registry.SchemaStatus(status))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema set to %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Schema description (default keeps the current one)")
	cmd.Flags().StringVar(&status, "status", string(registry.SchemaStable), "Schema status (stable or beta)")
	return cmd
}

func newVersionCheckCommand(ctx *commandContext) *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check registry versions against the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := out.format()
			if err != nil {
				return err
			}
			return ctx.withRegistry(func(store *registry.Store) error {
				runCtx := ctx.runContext(cmd)
				modules, err := store.LoadModules(runCtx)
				if err != nil {
					return err
				}
				schema, _, err := store.LoadDatabase(runCtx)
				if err != nil {
					return err
				}
				result, err := registry.CheckCompatibility(appVersion, modules, schema)
				if err != nil {
					return err
				}
				report := compatibilityReport{
					AppVersion: appVersion,
					Compatible: result.Compatible,
					Warnings:   result.Warnings,
					Errors:     result.Errors,
				}
				if ok, err := writeStructured(cmd, format, report); ok {
					if err != nil {
						return err
					}
				} else {
					printCompatibility(cmd.OutOrStdout(), report)
				}
				if !result.Compatible {
					return fmt.Errorf("registry is incompatible with app version %s", appVersion)
				}
				return nil
			})
		},
	}
	out.register(cmd)
	return cmd
}

type compatibilityReport struct {
	AppVersion string   `json:"appVersion" yaml:"appVersion"`
	Compatible bool     `json:"compatible" yaml:"compatible"`
	Warnings   []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors     []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func printCompatibility(w io.Writer, report compatibilityReport) {
	fmt.Fprintf(w, "App version: %s\n", report.AppVersion)
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}
	if report.Compatible {
		fmt.Fprintln(w, "Compatible")
	} else {
		fmt.Fprintln(w, "Incompatible")
	}
}

func printModules(w io.Writer, doc *registry.ModuleRegistry) {
	fmt.Fprintf(w, "Module Versions (last updated %s)\n", doc.LastUpdated)
	if len(doc.Modules) == 0 {
		fmt.Fprintln(w, "No modules registered")
		return
	}
	upper := cases.Upper(language.Und)
	rows := make([][]string, 0, len(doc.Modules))
	for _, name := range registry.SortedModuleNames(doc.Modules) {
		entry := doc.Modules[name]
		rows = append(rows, []string{
			upper.String(name),
			entry.Version,
			string(entry.Status),
			entry.ReleaseDate,
			valueOrDash(entry.Description),
		})
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"Module", "Version", "Status", "Released", "Description"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	))
}

func printDatabase(w io.Writer, doc *registry.DatabaseRegistry) {
	fmt.Fprintf(w, "Database Schema (last updated %s)\n", doc.LastUpdated)
	fmt.Fprintf(w, "  Version:     %s\n", doc.Schema.Version)
	fmt.Fprintf(w, "  Status:      %s\n", doc.Schema.Status)
	fmt.Fprintf(w, "  Description: %s\n", valueOrDash(doc.Schema.Description))
	fmt.Fprintf(w, "  Released:    %s\n", doc.Schema.ReleaseDate)
	fmt.Fprintf(w, "\nMigrations (%d total)\n", len(doc.Migrations))
	if len(doc.Migrations) == 0 {
		return
	}
	rows := make([][]string, 0, len(doc.Migrations))
	for _, m := range doc.Migrations {
		rows = append(rows, []string{m.ID, m.Version, string(m.Status), valueOrDash(m.AppliedDate), valueOrDash(m.Description)})
	}
	fmt.Fprintln(w, renderTable(w,
		[]string{"ID", "Version", "Status", "Applied", "Description"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	))
}
