// Package catalog persists video records in SQLite.
//
// The Store owns the videos table. Records are created by ImportFile or
// ImportFolder, enriched afterwards with derived fields (title, duration,
// thumbnail), edited through Update, and removed by Delete. A file path can
// be cataloged at most once; re-importing a known path fails with
// ErrDuplicatePath and never overwrites user edits.
//
// Every mutation runs in a single immediate-mode transaction with bounded
// retry on SQLITE_BUSY, so concurrent CLI invocations serialize instead of
// interleaving.
package catalog
