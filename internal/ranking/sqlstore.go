package ranking

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
)

// SQLStore keeps the ranking in the SQLite "ranking" table.
type SQLStore struct{ db *sql.DB }

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Submit(ctx context.Context, e Entry) (Entry, error) {
	e, err := prepare(e, time.Now())
	if err != nil {
		return e, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO ranking(level, name, moves, created_at) VALUES(?,?,?,?)`,
		e.Level, e.Name, e.Moves, e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return e, err
	}
	e.ID, err = res.LastInsertId()
	return e, err
}

func (s *SQLStore) Top(ctx context.Context, level, limit int) ([]Entry, error) {
	limit = limitOrDefault(limit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, name, moves, created_at
		FROM ranking
		WHERE level=?
		ORDER BY moves ASC, id ASC
		LIMIT ?`, level, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Level, &e.Name, &e.Moves, &created); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			log.Warn().Err(err).Int64("id", e.ID).Msg("ranking: bad created_at")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
