package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"tagwater/internal/logging"
)

// Catalog is the set of entry mutations a commit performs.
type Catalog interface {
	NewFile(ctx context.Context, ext string) (int64, error)
	NewGroup(ctx context.Context, cover int64, members []int64) (int64, error)
	AttachTags(ctx context.Context, entryID int64, tagIDs []int64) error
}

// ContentStore receives the bytes of committed files.
type ContentStore interface {
	Store(src string, entryID int64, ext string) error
}

// CommittedFile pairs a declared path with the entry created for it.
type CommittedFile struct {
	Path string
	ID   int64
}

// CopyFailure is a file whose entry and tags exist but whose bytes did not
// reach content storage.
type CopyFailure struct {
	Path string
	ID   int64
	Err  error
}

func (f CopyFailure) String() string {
	return fmt.Sprintf("Error copying '%s': %v", f.Path, f.Err)
}

// GroupResult holds either the new group's ID or the reason it was not
// created.
type GroupResult struct {
	ID  int64
	Err error
}

// CommitResult records everything a commit did. Copy failures are soft;
// group errors are hard for their own group only.
type CommitResult struct {
	Files        []CommittedFile
	FailedCopies []CopyFailure
	Groups       []GroupResult
}

// Log returns one line per copy failure.
func (r *CommitResult) Log() []string {
	lines := make([]string, 0, len(r.FailedCopies))
	for _, f := range r.FailedCopies {
		lines = append(lines, f.String())
	}
	return lines
}

// GroupErrors returns the errors of groups that were not created.
func (r *CommitResult) GroupErrors() []error {
	var errs []error
	for _, g := range r.Groups {
		if g.Err != nil {
			errs = append(errs, g.Err)
		}
	}
	return errs
}

// Committer turns a validated Document into catalog entries.
type Committer struct {
	Catalog Catalog
	Content ContentStore
	WorkDir string
	Logger  *slog.Logger
}

// Commit creates an entry for every file, then for every group. tagIDs must
// map every name in doc.Tags to its registry identity.
//
// The returned error is reserved for catalog failures that stop the commit
// midway; the partial result is still returned alongside it.
func (c *Committer) Commit(ctx context.Context, doc *Document, tagIDs map[string]int64) (*CommitResult, error) {
	logger := c.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	result := &CommitResult{}

	ids := make([]int64, len(doc.Files))
	for i, f := range doc.Files {
		ext := Extension(f.Path)
		id, err := c.Catalog.NewFile(ctx, ext)
		if err != nil {
			return result, fmt.Errorf("create entry for %s: %w", f.Path, err)
		}
		ids[i] = id

		tags, err := resolveTags(f.Tags, tagIDs)
		if err != nil {
			return result, err
		}
		if err := c.Catalog.AttachTags(ctx, id, tags); err != nil {
			return result, fmt.Errorf("tag entry %d: %w", id, err)
		}
		result.Files = append(result.Files, CommittedFile{Path: f.Path, ID: id})

		if err := c.Content.Store(SourcePath(c.WorkDir, f.Path), id, ext); err != nil {
			failure := CopyFailure{Path: f.Path, ID: id, Err: err}
			result.FailedCopies = append(result.FailedCopies, failure)
			logger.Warn("file copy failed",
				logging.Int64(logging.FieldEntryID, id),
				logging.String("path", f.Path),
				logging.Error(err),
			)
			continue
		}
		logger.Debug("file committed",
			logging.Int64(logging.FieldEntryID, id),
			logging.String("path", f.Path),
			logging.Int("tags", len(tags)),
		)
	}

	for gi, g := range doc.Groups {
		res, err := c.commitGroup(ctx, g, ids, tagIDs)
		if err != nil {
			result.Groups = append(result.Groups, res)
			return result, err
		}
		if res.Err != nil {
			res.Err = &GroupError{Index: gi, Members: doc.MemberPaths(g), Err: res.Err}
			logger.Warn("group not created", logging.Error(res.Err))
		} else {
			logger.Debug("group committed",
				logging.Int64(logging.FieldEntryID, res.ID),
				logging.Int("members", len(g.Members)),
			)
		}
		result.Groups = append(result.Groups, res)
	}
	return result, nil
}

// commitGroup returns a GroupResult carrying invariant violations, and a
// separate error for failures that should stop the commit.
func (c *Committer) commitGroup(ctx context.Context, g GroupDecl, ids []int64, tagIDs map[string]int64) (GroupResult, error) {
	if len(g.Members) == 0 {
		return GroupResult{Err: ErrEmptyGroup}, nil
	}
	members := make([]int64, len(g.Members))
	for i, idx := range g.Members {
		members[i] = ids[idx]
	}

	id, err := c.Catalog.NewGroup(ctx, members[0], members)
	if err != nil {
		return GroupResult{Err: err}, nil
	}

	tags, err := resolveTags(g.Tags, tagIDs)
	if err != nil {
		return GroupResult{ID: id}, err
	}
	if err := c.Catalog.AttachTags(ctx, id, tags); err != nil {
		return GroupResult{ID: id}, fmt.Errorf("tag group %d: %w", id, err)
	}
	return GroupResult{ID: id}, nil
}

func resolveTags(tags TagSet, tagIDs map[string]int64) ([]int64, error) {
	out := make([]int64, 0, len(tags))
	for _, name := range tags.Sorted() {
		id, ok := tagIDs[name]
		if !ok {
			return nil, fmt.Errorf("tag %q was not resolved before commit", name)
		}
		out = append(out, id)
	}
	return out, nil
}

// Extension returns the file extension of path without its leading dot.
func Extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
