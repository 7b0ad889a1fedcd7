// Package main hosts the videomanager CLI entrypoint and command graph.
//
// The Cobra command tree exposes the video catalog (import, list, search,
// edit, delete, stats) and the version registry (module and database
// documents plus the migration log). Configuration resolution, logger setup
// and store construction happen once per invocation in commandContext so
// subcommands only deal with flags and rendering.
//
// Keep this package thin: behaviour belongs in internal/catalog and
// internal/registry, and commands here translate flags into calls and
// results into tables or JSON.
package main
