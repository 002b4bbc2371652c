package catalog

import "time"

// EntryType discriminates files from groups.
type EntryType int

const (
	EntryFile  EntryType = 1
	EntryGroup EntryType = 2
)

func (t EntryType) String() string {
	switch t {
	case EntryFile:
		return "file"
	case EntryGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Entry is a catalog identity. Cover is set on groups only; ParentGroup and
// Position are set on files that belong to a group. Zero means unset.
type Entry struct {
	ID          int64
	Type        EntryType
	Ext         string
	Cover       int64
	ParentGroup int64
	Position    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tag is a registered label.
type Tag struct {
	ID          int64
	Name        string
	CategoryID  int64
	Category    string
	Description string
}

// TagCategory is a named grouping of tags.
type TagCategory struct {
	ID          int64
	Name        string
	Description string
}
