package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// contentColumns is shared by every content SELECT. is_first lets the
// caller tell the program intro apart from later day-0 excursus items
// without a second round trip.
const contentColumns = `
	c.id, c.curriculum_order, c.day, c.title, c.subtitle, c.body,
	c.curriculum_order = (SELECT MIN(curriculum_order) FROM content_items) AS is_first,
	c.created_at, c.updated_at
`

// =============================================================================
// Content Queries
// =============================================================================

// GetContentByOrder returns the item at exactly curriculum_order.
// Returns ErrNotFound if no item sits at that position.
func (q queries) GetContentByOrder(ctx context.Context, order int) (*ContentItem, error) {
	var item ContentItem
	err := sqlx.GetContext(ctx, q.ext, &item,
		`SELECT `+contentColumns+` FROM content_items c WHERE c.curriculum_order = ?`,
		order)
	if err != nil {
		return nil, notFound(err, "query content by order")
	}
	return &item, nil
}

// GetContentByDay returns the item whose day equals day. When several
// items share a day the earliest in the sequence wins.
func (q queries) GetContentByDay(ctx context.Context, day int) (*ContentItem, error) {
	var item ContentItem
	err := sqlx.GetContext(ctx, q.ext, &item,
		`SELECT `+contentColumns+` FROM content_items c
		WHERE c.day = ?
		ORDER BY c.curriculum_order ASC
		LIMIT 1`,
		day)
	if err != nil {
		return nil, notFound(err, "query content by day")
	}
	return &item, nil
}

// GetContentFrom returns the first item at or after curriculum_order.
func (q queries) GetContentFrom(ctx context.Context, order int) (*ContentItem, error) {
	var item ContentItem
	err := sqlx.GetContext(ctx, q.ext, &item,
		`SELECT `+contentColumns+` FROM content_items c
		WHERE c.curriculum_order >= ?
		ORDER BY c.curriculum_order ASC
		LIMIT 1`,
		order)
	if err != nil {
		return nil, notFound(err, "query content from order")
	}
	return &item, nil
}

// GetNextContent returns the first item strictly after curriculum_order.
func (q queries) GetNextContent(ctx context.Context, order int) (*ContentItem, error) {
	return q.GetContentFrom(ctx, order+1)
}

// ListContent returns the table of contents in sequence order.
// Bodies are omitted; fetch an item individually to read it.
func (q queries) ListContent(ctx context.Context) ([]ContentItem, error) {
	items := []ContentItem{}
	err := sqlx.SelectContext(ctx, q.ext, &items,
		`SELECT
			c.id, c.curriculum_order, c.day, c.title, c.subtitle, '' AS body,
			c.curriculum_order = (SELECT MIN(curriculum_order) FROM content_items) AS is_first,
			c.created_at, c.updated_at
		FROM content_items c
		ORDER BY c.curriculum_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// UpsertContentItem inserts or replaces the item at item.CurriculumOrder.
// Idempotent, so an import can be re-run over an existing database.
func (q queries) UpsertContentItem(ctx context.Context, item *ContentItem) error {
	_, err := q.ext.ExecContext(ctx, `
		INSERT INTO content_items (curriculum_order, day, title, subtitle, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(curriculum_order) DO UPDATE SET
			day = excluded.day,
			title = excluded.title,
			subtitle = excluded.subtitle,
			body = excluded.body,
			updated_at = CURRENT_TIMESTAMP`,
		item.CurriculumOrder, item.Day, item.Title, item.Subtitle, item.Body,
	)
	if err != nil {
		return fmt.Errorf("upsert content item %d: %w", item.CurriculumOrder, err)
	}

	var id int64
	if err := sqlx.GetContext(ctx, q.ext, &id,
		`SELECT id FROM content_items WHERE curriculum_order = ?`, item.CurriculumOrder); err != nil {
		return fmt.Errorf("read content item id: %w", err)
	}
	item.ID = id
	return nil
}

// CountContent returns the number of content items.
func (q queries) CountContent(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, q.ext, &n, `SELECT COUNT(*) FROM content_items`); err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}
	return n, nil
}
