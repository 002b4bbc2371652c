package script

import (
	"encoding/json"
	"sort"
)

// TagSet is a resolved set of tag names. Only membership survives
// resolution; the order of the edits that produced it is not kept.
type TagSet map[string]struct{}

// NewTagSet returns a set holding names.
func NewTagSet(names ...string) TagSet {
	set := make(TagSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether name is a member.
func (s TagSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union adds every member of other to s.
func (s TagSet) Union(other TagSet) {
	for name := range other {
		s[name] = struct{}{}
	}
}

// Sorted returns the members in lexical order.
func (s TagSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// apply replays a single tag edit.
func (s TagSet) apply(op Token) {
	switch op.Kind {
	case TokenAddTag:
		s[op.Text] = struct{}{}
	case TokenRemoveTag:
		delete(s, op.Text)
	}
}

// MarshalJSON encodes the set as a sorted array of names.
func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// MarshalYAML encodes the set as a sorted sequence of names.
func (s TagSet) MarshalYAML() (any, error) {
	return s.Sorted(), nil
}

// FileDecl is a file named by the script together with its resolved tags.
type FileDecl struct {
	Path string `json:"path" yaml:"path"`
	Tags TagSet `json:"tags" yaml:"tags"`
	Line int    `json:"line" yaml:"line"`
}

// GroupDecl is a group block. Members index into Document.Files in the order
// the files were declared inside the block.
type GroupDecl struct {
	Members []int  `json:"members" yaml:"members"`
	Tags    TagSet `json:"tags" yaml:"tags"`
	Autotag bool   `json:"autotag,omitempty" yaml:"autotag,omitempty"`
	Line    int    `json:"line" yaml:"line"`
}

// Document is the parsed form of a script.
type Document struct {
	Files      []FileDecl        `json:"files" yaml:"files"`
	Groups     []GroupDecl       `json:"groups" yaml:"groups"`
	Tags       TagSet            `json:"tags" yaml:"tags"`
	Directives map[string]string `json:"directives,omitempty" yaml:"directives,omitempty"`
}

// MemberPaths returns the source paths of a group's files.
func (d *Document) MemberPaths(g GroupDecl) []string {
	paths := make([]string, 0, len(g.Members))
	for _, idx := range g.Members {
		if idx >= 0 && idx < len(d.Files) {
			paths = append(paths, d.Files[idx].Path)
		}
	}
	return paths
}
