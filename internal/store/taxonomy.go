package store

import (
	"database/sql"
	"encoding/json"
)

// --- Categories & keywords ---

// CreateCategory inserts a category or returns the existing one's id.
func (s *Store) CreateCategory(name, description, priority string) (int64, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO categories (name, description, priority) VALUES (?, ?, ?)`,
		name, description, priority)
	if err != nil {
		return 0, wrapErr("create category", err)
	}
	var id int64
	if err := s.db.QueryRow(`SELECT id FROM categories WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, wrapErr("create category", err)
	}
	return id, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories() ([]Category, error) {
	rows, err := s.db.Query(`SELECT id, name, COALESCE(description,''), priority, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, wrapErr("list categories", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Priority, &c.CreatedAt); err != nil {
			return nil, wrapErr("list categories", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// AddKeyword registers a weighted term under a category.
func (s *Store) AddKeyword(categoryID int64, term string, weight float64) error {
	_, err := s.db.Exec(`INSERT INTO keywords (category_id, term, weight) VALUES (?, ?, ?)`,
		categoryID, term, weight)
	return wrapErr("add keyword", err)
}

// ListKeywords returns keywords, optionally restricted to one category
// (categoryID 0 returns everything).
func (s *Store) ListKeywords(categoryID int64) ([]Keyword, error) {
	query := `SELECT id, category_id, term, weight, created_at FROM keywords`
	args := []interface{}{}
	if categoryID != 0 {
		query += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr("list keywords", err)
	}
	defer rows.Close()

	var kws []Keyword
	for rows.Next() {
		var k Keyword
		if err := rows.Scan(&k.ID, &k.CategoryID, &k.Term, &k.Weight, &k.CreatedAt); err != nil {
			return nil, wrapErr("list keywords", err)
		}
		kws = append(kws, k)
	}
	return kws, rows.Err()
}

// --- Classification results ---

// InsertFilterResult persists one (interaction, category) result row.
func (s *Store) InsertFilterResult(res *FilterResult) (int64, error) {
	matched := "[]"
	if len(res.MatchedKeywords) > 0 {
		b, err := json.Marshal(res.MatchedKeywords)
		if err != nil {
			return 0, wrapErr("insert filter result", err)
		}
		matched = string(b)
	}
	r, err := s.db.Exec(`
		INSERT INTO filter_results (interaction_id, category_id, confidence, matched_keywords, sentiment, priority)
		VALUES (?, ?, ?, ?, ?, ?)
	`, res.InteractionID, res.CategoryID, res.Confidence, matched, res.Sentiment, res.Priority)
	if err != nil {
		return 0, wrapErr("insert filter result", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, wrapErr("insert filter result", err)
	}
	res.ID = id
	return id, nil
}

// ListFilterResults returns the classification rows for an interaction.
func (s *Store) ListFilterResults(interactionID int64) ([]FilterResult, error) {
	rows, err := s.db.Query(`
		SELECT id, interaction_id, category_id, confidence, COALESCE(matched_keywords,'[]'), sentiment, priority, created_at
		FROM filter_results WHERE interaction_id = ? ORDER BY confidence DESC
	`, interactionID)
	if err != nil {
		return nil, wrapErr("list filter results", err)
	}
	defer rows.Close()
	return scanFilterResults(rows)
}

func scanFilterResults(rows *sql.Rows) ([]FilterResult, error) {
	var results []FilterResult
	for rows.Next() {
		var fr FilterResult
		var matched string
		if err := rows.Scan(&fr.ID, &fr.InteractionID, &fr.CategoryID, &fr.Confidence, &matched, &fr.Sentiment, &fr.Priority, &fr.CreatedAt); err != nil {
			return nil, wrapErr("scan filter result", err)
		}
		if matched != "" && matched != "[]" {
			_ = json.Unmarshal([]byte(matched), &fr.MatchedKeywords)
		}
		results = append(results, fr)
	}
	return results, rows.Err()
}
