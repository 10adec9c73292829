package termination

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateRecord(ctx context.Context, rec Record) (string, error) {
	var pipID any
	if rec.PipID != "" {
		pipID = rec.PipID
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO terminated_employees (employee_id, pip_id, final_score, final_utilization,
                                      reason, letter_text, letter_path, letter_sha256, terminated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, rec.EmployeeID, pipID, rec.FinalScore, rec.FinalUtilization, rec.Reason,
		rec.LetterText, rec.LetterPath, rec.LetterSHA256, rec.TerminatedAt).Scan(&id)
	return id, err
}

func (s *Store) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, COALESCE(pip_id::text, ''), final_score, final_utilization,
           reason, letter_text, letter_path, letter_sha256, terminated_at
    FROM terminated_employees
    ORDER BY terminated_at DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.PipID, &rec.FinalScore, &rec.FinalUtilization,
			&rec.Reason, &rec.LetterText, &rec.LetterPath, &rec.LetterSHA256, &rec.TerminatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
