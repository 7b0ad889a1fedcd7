// Package registry maintains the module and database version registries.
//
// Both registries are JSON documents on disk. The module registry maps module
// names to their current version, status, and release date; the database
// registry records the schema version plus an append-only log of migration
// entries. Migrations are metadata: nothing here executes schema changes.
//
// Every mutation follows the same path: take an exclusive file lock next to
// the document, read and validate it, apply the change to the parsed copy,
// advance lastUpdated, validate again, and atomically replace the file. A
// rejected change never touches the file, and a crash leaves the previous
// document intact. Reads take a shared lock.
//
// Documents are rewritten in canonical form. A hand-edited migration status
// spelled "rolled back" or "rolled-back" is read as rolled_back and stored
// that way by the next mutation of the database registry.
//
// The two documents are independent; no operation spans both.
package registry
