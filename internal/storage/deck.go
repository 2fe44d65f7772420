package storage

import (
	"fmt"
	"time"

	"slidesmith/internal/domain"
)

// DeckStore persists deck bookkeeping rows in SQLite.
type DeckStore struct {
	db *DB
}

func NewDeckStore(db *DB) *DeckStore {
	return &DeckStore{db: db}
}

func (s *DeckStore) CreateDeck(d *domain.DeckRecord) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO decks (id, name, file_path, slide_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.FilePath, d.SlideCount, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (s *DeckStore) GetDeck(id string) (*domain.DeckRecord, error) {
	d := &domain.DeckRecord{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, file_path, slide_count, created_at, updated_at FROM decks WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.FilePath, &d.SlideCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get deck: %w", err)
	}
	return d, nil
}

func (s *DeckStore) ListDecks() ([]domain.DeckRecord, error) {
	rows, err := s.db.conn.Query(`SELECT id, name, file_path, slide_count, created_at, updated_at FROM decks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []domain.DeckRecord
	for rows.Next() {
		var d domain.DeckRecord
		if err := rows.Scan(&d.ID, &d.Name, &d.FilePath, &d.SlideCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (s *DeckStore) UpdateDeck(d *domain.DeckRecord) error {
	d.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE decks SET name = ?, file_path = ?, slide_count = ?, updated_at = ? WHERE id = ?`,
		d.Name, d.FilePath, d.SlideCount, d.UpdatedAt, d.ID,
	)
	return err
}

func (s *DeckStore) DeleteDeck(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM decks WHERE id = ?`, id)
	return err
}

func (s *DeckStore) RecordRun(r *domain.GenerationRun) error {
	_, err := s.db.conn.Exec(
		`INSERT INTO generation_runs (id, deck_id, outline_title, model, slides_total, slides_filled, error, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.DeckID, r.OutlineTitle, r.Model, r.SlidesTotal, r.SlidesFilled, r.Error, r.StartedAt, r.FinishedAt,
	)
	return err
}

func (s *DeckStore) ListRuns(deckID string) ([]domain.GenerationRun, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, deck_id, outline_title, model, slides_total, slides_filled, error, started_at, finished_at FROM generation_runs WHERE deck_id = ? ORDER BY started_at DESC`,
		deckID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.GenerationRun
	for rows.Next() {
		var r domain.GenerationRun
		if err := rows.Scan(&r.ID, &r.DeckID, &r.OutlineTitle, &r.Model, &r.SlidesTotal, &r.SlidesFilled, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
