// Package ingest runs ingestion scripts against the catalog and vault.
//
// A run reads the script, lexes, parses and validates it, then commits the
// document while holding both the vault lock and the catalog writer lock.
// The outcome is a Result: a success carrying non-fatal copy-failure lines,
// or a failure carrying diagnostic lines. Infrastructure problems such as a
// held vault lock or an unreachable catalog are returned as errors instead.
package ingest
