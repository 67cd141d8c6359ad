package themestore

import (
	"context"
	"fmt"
)

type Overview struct {
	Total         int            `json:"total"`
	BySource      map[string]int `json:"bySource"`
	LastUpdatedAt string         `json:"lastUpdatedAt,omitempty"`
}

func (r *Repository) Overview(ctx context.Context) (Overview, error) {
	overview := Overview{BySource: make(map[string]int)}

	rows, err := r.db.QueryContext(ctx, "SELECT source, COUNT(1) FROM themes GROUP BY source")
	if err != nil {
		return Overview{}, fmt.Errorf("count themes by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return Overview{}, fmt.Errorf("scan theme count row: %w", err)
		}
		overview.BySource[source] = count
		overview.Total += count
	}
	if err := rows.Err(); err != nil {
		return Overview{}, fmt.Errorf("iterate theme count rows: %w", err)
	}

	if overview.Total > 0 {
		if err := r.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM themes").Scan(&overview.LastUpdatedAt); err != nil {
			return Overview{}, fmt.Errorf("read last theme update: %w", err)
		}
	}

	return overview, nil
}
