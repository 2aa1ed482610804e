package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/legalease/internal"
)

// LogQuery appends an answered question to the audit log. A missing ID or
// timestamp is filled in.
func (s *Store) LogQuery(ctx context.Context, rec internal.QueryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_log (id, session_id, document_name, question, query_lang, target_lang, primary_text, secondary_text, score, winner, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.DocumentName, rec.Question, rec.QueryLang, rec.TargetLang,
		rec.PrimaryText, rec.SecondaryText, rec.Score, rec.Winner, rec.Timestamp.UTC())
	return err
}

// RecentQueries returns up to limit entries, newest first.
func (s *Store) RecentQueries(ctx context.Context, limit int) ([]internal.QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, COALESCE(document_name, ''), question, COALESCE(query_lang, ''), COALESCE(target_lang, ''),
		        COALESCE(primary_text, ''), COALESCE(secondary_text, ''), COALESCE(score, 0), COALESCE(winner, ''), created_at
		 FROM query_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.QueryRecord
	for rows.Next() {
		var r internal.QueryRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.DocumentName, &r.Question, &r.QueryLang, &r.TargetLang,
			&r.PrimaryText, &r.SecondaryText, &r.Score, &r.Winner, &r.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
