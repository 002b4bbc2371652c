// Package script compiles tagwater ingestion scripts.
//
// A script lists media files, the tags each file should carry and the groups
// files should be collected into. Compilation runs in four strictly ordered
// steps: Lex turns bytes into line-annotated tokens, Parse builds a Document
// (resolving variables and tag add/remove arithmetic inline), Validate checks
// the document against the tag registry and the filesystem, and Commit turns
// a validated document into catalog mutations.
//
// Lexing, parsing and validation never mutate anything. Commit is not
// transactional: a failed group leaves the files created before it in place,
// so a script is not safely re-runnable after a partial failure.
package script
