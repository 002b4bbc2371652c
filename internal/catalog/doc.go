// Package catalog persists tags, tag categories and catalog entries in SQLite.
//
// An entry is either a file or a group of files. A file belongs to at most
// one group, a group is never itself a member, and a group's cover is always
// a file. NewGroup checks these rules inside a transaction so a rejected
// group leaves no trace.
//
// Every mutation runs under the Store's writer lock. Batch holds that lock
// across a whole sequence of mutations, which is how a script commit keeps
// its writes from interleaving with another run in the same process.
//
// Schema changes bump the version in schema.go; users recreate the catalog
// to adopt the new schema.
package catalog
