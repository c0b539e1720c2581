package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/mohammad-safakhou/scout/models"
)

// Store persists research jobs and their progress logs in Postgres.
type Store struct {
	DB *sql.DB
}

// NewWithDSN opens a Postgres connection and verifies it.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// CreateJob inserts a new research job in PENDING state.
func (s *Store) CreateJob(ctx context.Context, topic string) (models.ResearchJob, error) {
	row := s.DB.QueryRowContext(ctx, `
INSERT INTO research_jobs (topic, status)
VALUES ($1, $2)
RETURNING id, topic, status, created_at, updated_at
`, topic, models.JobStatusPending)

	var job models.ResearchJob
	if err := row.Scan(&job.ID, &job.Topic, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return models.ResearchJob{}, err
	}
	return job, nil
}

// GetJob loads a job by id. Returns models.ErrJobNotFound when absent.
func (s *Store) GetJob(ctx context.Context, id string) (models.ResearchJob, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT id, topic, status, result, created_at, updated_at
FROM research_jobs
WHERE id=$1
`, id)

	var job models.ResearchJob
	var result []byte
	if err := row.Scan(&job.ID, &job.Topic, &job.Status, &result, &job.CreatedAt, &job.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return models.ResearchJob{}, models.ErrJobNotFound
		}
		return models.ResearchJob{}, err
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &job.Result); err != nil {
			return models.ResearchJob{}, fmt.Errorf("decode job result: %w", err)
		}
	}
	return job, nil
}

// ListJobs returns job projections ordered by creation time descending.
func (s *Store) ListJobs(ctx context.Context) ([]models.ResearchJob, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, topic, status, created_at
FROM research_jobs
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ResearchJob
	for rows.Next() {
		var job models.ResearchJob
		if err := rows.Scan(&job.ID, &job.Topic, &job.Status, &job.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// UpdateJobStatus transitions a job's status. A non-nil result is persisted
// alongside the status; callers pass one only for COMPLETED.
func (s *Store) UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, result []models.ArticleSummary) error {
	var err error
	var op sql.Result
	if result != nil {
		var encoded []byte
		encoded, err = json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode job result: %w", err)
		}
		op, err = s.DB.ExecContext(ctx, `
UPDATE research_jobs SET status=$2, result=$3, updated_at=NOW() WHERE id=$1
`, id, status, encoded)
	} else {
		op, err = s.DB.ExecContext(ctx, `
UPDATE research_jobs SET status=$2, updated_at=NOW() WHERE id=$1
`, id, status)
	}
	if err != nil {
		return err
	}
	affected, err := op.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrJobNotFound
	}
	return nil
}

// AppendLog appends one progress entry for a job. The timestamp is assigned
// by the store.
func (s *Store) AppendLog(ctx context.Context, jobID string, message string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO job_logs (job_id, message) VALUES ($1, $2)
`, jobID, message)
	return err
}

// ListLogs returns a job's log entries ordered by timestamp ascending.
func (s *Store) ListLogs(ctx context.Context, jobID string) ([]models.JobLogEntry, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, job_id, message, timestamp
FROM job_logs
WHERE job_id=$1
ORDER BY timestamp ASC, id ASC
`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobLogEntry
	for rows.Next() {
		var entry models.JobLogEntry
		if err := rows.Scan(&entry.ID, &entry.JobID, &entry.Message, &entry.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
