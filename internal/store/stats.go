package store

import "context"

// GetStats counts rows across the core tables.
func (a *Adapter) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats

	queries := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM items WHERE deleted_at = 0`, &s.Items},
		{`SELECT COUNT(*) FROM tags`, &s.Tags},
		{`SELECT COUNT(*) FROM item_tags`, &s.ItemTags},
		{`SELECT COUNT(*) FROM extension_settings`, &s.Settings},
	}

	for _, q := range queries {
		if err := a.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, classify("store.GetStats", err)
		}
	}

	return &s, nil
}
