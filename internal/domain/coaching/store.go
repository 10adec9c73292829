package coaching

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateSession(ctx context.Context, session Session) (string, error) {
	items, err := json.Marshal(session.ActionItems)
	if err != nil {
		return "", err
	}
	var pipID any
	if session.PipID != "" {
		pipID = session.PipID
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO coaching_sessions (employee_id, pip_id, score, category, priority,
                                   feedback, action_items, timeframe, follow_up_required, created_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, session.EmployeeID, pipID, session.Score, session.Category, session.Priority,
		session.Feedback, items, session.Timeframe, session.FollowUpRequired, session.CreatedAt).Scan(&id)
	return id, err
}

func (s *Store) ListSessions(ctx context.Context, employeeID string) ([]Session, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, COALESCE(pip_id::text, ''), score, category, priority,
           feedback, action_items, timeframe, follow_up_required, created_at
    FROM coaching_sessions
    WHERE employee_id = $1
    ORDER BY created_at DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var session Session
		var items []byte
		if err := rows.Scan(&session.ID, &session.EmployeeID, &session.PipID, &session.Score,
			&session.Category, &session.Priority, &session.Feedback, &items,
			&session.Timeframe, &session.FollowUpRequired, &session.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &session.ActionItems); err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, rows.Err()
}
