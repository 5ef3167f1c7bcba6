package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-assignment-service/internal/domain"
)

type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

// UpsertSubmissions locks the assignment row so a concurrent grade either
// sees all of these answers or none, and refuses writes once it is graded.
func (s *SubmissionStore) UpsertSubmissions(ctx context.Context, studentID, quizID string, subs []domain.Submission) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var completed bool
	err = tx.QueryRow(ctx,
		`SELECT completed FROM assignments WHERE user_id=$1 AND quiz_id=$2 FOR UPDATE`,
		studentID, quizID,
	).Scan(&completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAssignmentNotFound
	}
	if err != nil {
		return fmt.Errorf("lock assignment: %w", err)
	}
	if completed {
		return domain.ErrAssignmentCompleted
	}

	batch := &pgx.Batch{}
	for _, sub := range subs {
		batch.Queue(
			`INSERT INTO submissions (user_id, question_id, answer_id, quiz_id) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, question_id) DO UPDATE SET answer_id=EXCLUDED.answer_id, updated_at=now()`,
			studentID, sub.QuestionID, sub.AnswerID, quizID)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("upsert submission: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *SubmissionStore) ListSubmissions(ctx context.Context, studentID string, questionIDs []string) ([]domain.Submission, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT question_id, answer_id FROM submissions WHERE user_id=$1 AND question_id = ANY($2)`,
		studentID, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		sub := domain.Submission{StudentID: studentID}
		if err := rows.Scan(&sub.QuestionID, &sub.AnswerID); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}
