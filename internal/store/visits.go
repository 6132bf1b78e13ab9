package store

import "context"

// InsertVisit records a visit row for itemID.
func (a *Adapter) InsertVisit(ctx context.Context, v *Visit) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO visits (id, item_id, visited_at) VALUES (?, ?, ?)`,
		v.ID, v.ItemID, v.VisitedAt)
	if err != nil {
		return classify("store.InsertVisit", err)
	}

	return nil
}
