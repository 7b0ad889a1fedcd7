package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"videomanager/internal/registry"
)

func newMigrationCommand(ctx *commandContext) *cobra.Command {
	migrationCmd := &cobra.Command{
		Use:   "migration",
		Short: "Record schema migrations in the database registry",
	}
	migrationCmd.AddCommand(newMigrationAppendCommand(ctx))
	migrationCmd.AddCommand(newMigrationMarkCommand(ctx))
	return migrationCmd
}

func newMigrationAppendCommand(ctx *commandContext) *cobra.Command {
	var status, appliedDate string
	cmd := &cobra.Command{
		Use:   "append <id> <version> <description...>",
		Short: "Append a migration to the log",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := registry.Migration{
				ID:          args[0],
				Version:     args[1],
				Description: strings.Join(args[2:], " "),
				Status:      registry.MigrationStatus(status),
				AppliedDate: strings.TrimSpace(appliedDate),
			}
			return ctx.withRegistry(func(store *registry.Store) error {
				if err := store.AppendMigration(ctx.runContext(cmd), entry); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Appended migration %s (%s)\n", entry.ID, entry.Version)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", string(registry.MigrationPending), "Initial status (pending or applied)")
	cmd.Flags().StringVar(&appliedDate, "applied-date", "", "Applied date as YYYY-MM-DD for applied migrations (default today)")
	return cmd
}

func newMigrationMarkCommand(ctx *commandContext) *cobra.Command {
	var appliedDate string
	cmd := &cobra.Command{
		Use:   "mark <id> <status>",
		Short: "Move a migration to applied or rolled_back",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var applied *time.Time
			if value := strings.TrimSpace(appliedDate); value != "" {
				parsed, err := registry.ParseDate(value)
				if err != nil {
					return err
				}
				applied = &parsed
			}
			status := registry.MigrationStatus(args[1])
			return ctx.withRegistry(func(store *registry.Store) error {
				if err := store.MarkMigrationStatus(ctx.runContext(cmd), args[0], status, applied); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Migration %s marked %s\n", args[0], args[1])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&appliedDate, "applied-date", "", "Applied date as YYYY-MM-DD (default today)")
	return cmd
}
