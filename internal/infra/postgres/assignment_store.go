package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-assignment-service/internal/domain"
)

type AssignmentStore struct {
	pool *pgxpool.Pool
}

func NewAssignmentStore(pool *pgxpool.Pool) *AssignmentStore {
	return &AssignmentStore{pool: pool}
}

func (s *AssignmentStore) CreateAssignment(ctx context.Context, a domain.Assignment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assignments (user_id, quiz_id, rng_seed, completed, score) VALUES ($1, $2, $3, $4, $5)`,
		a.StudentID, a.QuizID, a.Seed, a.Completed, a.Score)
	if isUniqueViolation(err) {
		return domain.ErrAssignmentExists
	}
	if err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

func (s *AssignmentStore) GetAssignment(ctx context.Context, studentID, quizID string) (domain.Assignment, error) {
	a := domain.Assignment{StudentID: studentID, QuizID: quizID}
	err := s.pool.QueryRow(ctx,
		`SELECT rng_seed, completed, score FROM assignments WHERE user_id=$1 AND quiz_id=$2`,
		studentID, quizID,
	).Scan(&a.Seed, &a.Completed, &a.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("load assignment: %w", err)
	}
	return a, nil
}

func (s *AssignmentStore) ListAssignments(ctx context.Context, studentID string) ([]domain.Assignment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT quiz_id, rng_seed, completed, score FROM assignments WHERE user_id=$1 ORDER BY quiz_id`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.Assignment
	for rows.Next() {
		a := domain.Assignment{StudentID: studentID}
		if err := rows.Scan(&a.QuizID, &a.Seed, &a.Completed, &a.Score); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CompleteAssignment only flips rows that are still open, so concurrent
// graders across instances cannot both record a score.
func (s *AssignmentStore) CompleteAssignment(ctx context.Context, studentID, quizID string, score int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE assignments SET completed=TRUE, score=$3
		 WHERE user_id=$1 AND quiz_id=$2 AND NOT completed`,
		studentID, quizID, score)
	if err != nil {
		return fmt.Errorf("complete assignment: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := s.GetAssignment(ctx, studentID, quizID); err != nil {
		return err
	}
	return domain.ErrAlreadyGraded
}
