// Package vault owns the on-disk content store that sits beside the catalog.
//
// Committed file bytes live under <vault>/files named by entry ID. The vault
// also carries an advisory lock file that keeps two script runs from
// mutating the same vault at once.
package vault
