package store

// CategoryStat aggregates classification results for one category.
type CategoryStat struct {
	Category      string  `json:"category"`
	MatchCount    int     `json:"match_count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// SessionStatusCounts returns session counts grouped by status.
func (s *Store) SessionStatusCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, wrapErr("session status counts", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, wrapErr("session status counts", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// InteractionCount returns the total number of stored interactions.
func (s *Store) InteractionCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM interactions`).Scan(&n); err != nil {
		return 0, wrapErr("interaction count", err)
	}
	return n, nil
}

// CategoryStats returns per-category match counts and average
// confidence over all classification results.
func (s *Store) CategoryStats() ([]CategoryStat, error) {
	rows, err := s.db.Query(`
		SELECT c.name, COUNT(fr.id), COALESCE(AVG(fr.confidence), 0)
		FROM categories c
		LEFT JOIN filter_results fr ON c.id = fr.category_id
		GROUP BY c.id, c.name
		ORDER BY COUNT(fr.id) DESC, c.name
	`)
	if err != nil {
		return nil, wrapErr("category stats", err)
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var cs CategoryStat
		if err := rows.Scan(&cs.Category, &cs.MatchCount, &cs.AvgConfidence); err != nil {
			return nil, wrapErr("category stats", err)
		}
		stats = append(stats, cs)
	}
	return stats, rows.Err()
}
