package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// NewTagCategory registers a category and returns its ID.
func (b *Batch) NewTagCategory(ctx context.Context, name, description string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("tag category name is empty")
	}
	now := timestamp()
	id, err := b.store.insert(ctx,
		`INSERT INTO tag_category (name, description, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, description, now, now,
	)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("tag category %q: %w", name, ErrAlreadyExists)
	}
	if err != nil {
		return 0, fmt.Errorf("insert tag category: %w", err)
	}
	return id, nil
}

// NewTag registers a tag under categoryID and returns its ID.
func (b *Batch) NewTag(ctx context.Context, name string, categoryID int64, description string) (int64, error) {
	if name == "" || strings.ContainsAny(name, " \t\r\n;") {
		return 0, fmt.Errorf("invalid tag name %q", name)
	}
	now := timestamp()
	id, err := b.store.insert(ctx,
		`INSERT INTO tag (name, category_id, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, categoryID, description, now, now,
	)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("tag %q: %w", name, ErrAlreadyExists)
	}
	if err != nil {
		return 0, fmt.Errorf("insert tag: %w", err)
	}
	return id, nil
}

// NewTagCategory registers a category under the writer lock.
func (s *Store) NewTagCategory(ctx context.Context, name, description string) (int64, error) {
	var id int64
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		id, err = b.NewTagCategory(ctx, name, description)
		return err
	})
	return id, err
}

// NewTag registers a tag under the writer lock.
func (s *Store) NewTag(ctx context.Context, name string, categoryID int64, description string) (int64, error) {
	var id int64
	err := s.Batch(ctx, func(b *Batch) error {
		var err error
		id, err = b.NewTag(ctx, name, categoryID, description)
		return err
	})
	return id, err
}

// TagID resolves a tag name. The boolean is false when no such tag exists.
func (s *Store) TagID(ctx context.Context, name string) (int64, bool, error) {
	return s.lookupID(ctx, `SELECT tag_id FROM tag WHERE name = ?`, name)
}

// TagCategoryID resolves a category name. The boolean is false when no such
// category exists.
func (s *Store) TagCategoryID(ctx context.Context, name string) (int64, bool, error) {
	return s.lookupID(ctx, `SELECT category_id FROM tag_category WHERE name = ?`, name)
}

func (s *Store) lookupID(ctx context.Context, query, name string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ensureContext(ctx), query, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup %q: %w", name, err)
	}
	return id, true, nil
}

// TagIDs resolves every name. Any unknown name is reported as ErrNotFound.
func (s *Store) TagIDs(ctx context.Context, names []string) (map[string]int64, error) {
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT name, tag_id FROM tag WHERE name IN (`+makePlaceholders(len(names))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tag ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name string
			id   int64
		)
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("scan tag id: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, name := range names {
		if _, ok := ids[name]; !ok {
			return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
		}
	}
	return ids, nil
}

// MissingTags returns the names that are not registered, in input order.
func (s *Store) MissingTags(ctx context.Context, names []string) ([]string, error) {
	var missing []string
	for _, name := range names {
		_, ok, err := s.TagID(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// FindTags lists tags whose name contains text, ordered by name. A non-zero
// categoryID restricts the search to that category.
func (s *Store) FindTags(ctx context.Context, text string, categoryID int64) ([]Tag, error) {
	query := `SELECT t.tag_id, t.name, t.category_id, c.name, t.description
        FROM tag t JOIN tag_category c ON c.category_id = t.category_id
        WHERE t.name LIKE ? ESCAPE '\'`
	args := []any{likePattern(text)}
	if categoryID != 0 {
		query += ` AND t.category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY t.name ASC`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("find tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CategoryID, &tag.Category, &tag.Description); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// FindTagCategories lists categories whose name contains text, ordered by name.
func (s *Store) FindTagCategories(ctx context.Context, text string) ([]TagCategory, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT category_id, name, description FROM tag_category WHERE name LIKE ? ESCAPE '\' ORDER BY name ASC`,
		likePattern(text),
	)
	if err != nil {
		return nil, fmt.Errorf("find tag categories: %w", err)
	}
	defer rows.Close()

	var categories []TagCategory
	for rows.Next() {
		var c TagCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("scan tag category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func likePattern(text string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(text) + "%"
}
