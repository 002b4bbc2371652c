package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Batch exposes catalog mutations to code already holding the writer lock.
// It is only valid inside the function passed to Store.Batch.
type Batch struct {
	store *Store
}

// NewFile creates a file entry with the given extension (without the dot).
func (b *Batch) NewFile(ctx context.Context, ext string) (int64, error) {
	now := timestamp()
	id, err := b.store.insert(ctx,
		`INSERT INTO entry (entry_type, ext, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		int(EntryFile), ext, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file entry: %w", err)
	}
	return id, nil
}

// NewGroup creates a group entry with the given cover and assigns members to
// it in order. Nothing is written when the cover is not a file, a member is
// unknown, is a group, is listed twice or already belongs to a group.
func (b *Batch) NewGroup(ctx context.Context, cover int64, members []int64) (int64, error) {
	if len(members) == 0 {
		return 0, ErrEmptyGroup
	}
	ctx = ensureContext(ctx)

	tx, err := b.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin group tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seen := make(map[int64]struct{}, len(members))
	for _, id := range members {
		if _, dup := seen[id]; dup {
			return 0, fmt.Errorf("entry %d listed twice: %w", id, ErrInvalidMember)
		}
		seen[id] = struct{}{}

		var (
			entryType EntryType
			parent    sql.NullInt64
		)
		err := tx.QueryRowContext(ctx, `SELECT entry_type, parent_group FROM entry WHERE entry_id = ?`, id).
			Scan(&entryType, &parent)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("entry %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("inspect member %d: %w", id, err)
		}
		if entryType != EntryFile {
			return 0, fmt.Errorf("entry %d is a %s: %w", id, entryType, ErrInvalidMember)
		}
		if parent.Valid {
			return 0, fmt.Errorf("entry %d belongs to group %d: %w", id, parent.Int64, ErrAlreadyGrouped)
		}
	}

	var coverType EntryType
	err = tx.QueryRowContext(ctx, `SELECT entry_type FROM entry WHERE entry_id = ?`, cover).Scan(&coverType)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && coverType != EntryFile) {
		return 0, fmt.Errorf("entry %d: %w", cover, ErrInvalidCover)
	}
	if err != nil {
		return 0, fmt.Errorf("inspect cover %d: %w", cover, err)
	}

	now := timestamp()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO entry (entry_type, cover, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		int(EntryGroup), cover, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert group entry: %w", err)
	}
	groupID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for pos, id := range members {
		if _, err := tx.ExecContext(ctx,
			`UPDATE entry SET parent_group = ?, position = ?, updated_at = ? WHERE entry_id = ?`,
			groupID, pos+1, now, id,
		); err != nil {
			return 0, fmt.Errorf("assign member %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit group: %w", err)
	}
	return groupID, nil
}

// AttachTags links tags to an entry. Tags already attached are left alone.
func (b *Batch) AttachTags(ctx context.Context, entryID int64, tagIDs []int64) error {
	for _, tagID := range tagIDs {
		if err := b.store.execWithoutResultRetry(ctx,
			`INSERT OR IGNORE INTO entry_tag (entry_id, tag_id) VALUES (?, ?)`,
			entryID, tagID,
		); err != nil {
			return fmt.Errorf("attach tag %d to entry %d: %w", tagID, entryID, err)
		}
	}
	return nil
}

// NewFile creates a file entry under the writer lock.
func (s *Store) NewFile(ctx context.Context, ext string) (int64, error) {
	var id int64
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		id, err = b.NewFile(ctx, ext)
		return err
	})
	return id, err
}

// NewGroup creates a group under the writer lock.
func (s *Store) NewGroup(ctx context.Context, cover int64, members []int64) (int64, error) {
	var id int64
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		id, err = b.NewGroup(ctx, cover, members)
		return err
	})
	return id, err
}

// AttachTags links tags to an entry under the writer lock.
func (s *Store) AttachTags(ctx context.Context, entryID int64, tagIDs []int64) error {
	return s.Batch(ctx, func(b *Batch) error {
		return b.AttachTags(ctx, entryID, tagIDs)
	})
}

const entryColumns = "entry_id, entry_type, ext, cover, parent_group, position, created_at, updated_at"

// Entry fetches an entry by ID. It returns nil when the entry does not exist.
func (s *Store) Entry(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+entryColumns+` FROM entry WHERE entry_id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// GroupMembers returns the member IDs of a group in position order.
func (s *Store) GroupMembers(ctx context.Context, groupID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT entry_id FROM entry WHERE parent_group = ? ORDER BY position, entry_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query group members: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// EntryTags returns the names of the tags attached to an entry, ordered by name.
func (s *Store) EntryTags(ctx context.Context, entryID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT t.name FROM entry_tag et JOIN tag t ON t.tag_id = et.tag_id WHERE et.entry_id = ? ORDER BY t.name`,
		entryID,
	)
	if err != nil {
		return nil, fmt.Errorf("query entry tags: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan entry tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountEntries returns the number of entries of the given type.
func (s *Store) CountEntries(ctx context.Context, entryType EntryType) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1) FROM entry WHERE entry_type = ?`, int(entryType),
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry      Entry
		ext        sql.NullString
		cover      sql.NullInt64
		parent     sql.NullInt64
		position   sql.NullInt64
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&entry.ID, &entry.Type, &ext, &cover, &parent, &position, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	entry.Ext = ext.String
	entry.Cover = cover.Int64
	entry.ParentGroup = parent.Int64
	entry.Position = int(position.Int64)
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		entry.UpdatedAt = updated
	}
	return &entry, nil
}
