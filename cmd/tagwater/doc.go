// Command tagwater ingests tagging scripts into a media catalog and manages
// the tag registry the scripts refer to.
package main
