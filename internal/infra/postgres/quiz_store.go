package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-assignment-service/internal/domain"
)

// QuizStore persists authored quizzes across the quizzes, questions and
// answers tables. It also serves as the loader behind the quiz caches.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

// CreateQuiz writes the quiz and its whole pool in one transaction.
func (s *QuizStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	batch.Queue(
		`INSERT INTO quizzes (id, title, question_count, per_page, shuffle_questions, shuffle_answers)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		quiz.ID, quiz.Title, quiz.QuestionCount, quiz.PerPage, quiz.ShuffleQuestions, quiz.ShuffleAnswers,
	)
	for _, q := range quiz.Questions {
		batch.Queue(`INSERT INTO questions (id, quiz_id, text) VALUES ($1, $2, $3)`, q.ID, quiz.ID, q.Text)
		for _, a := range q.Answers {
			batch.Queue(`INSERT INTO answers (id, question_id, text, correct) VALUES ($1, $2, $3, $4)`,
				a.ID, q.ID, a.Text, a.Correct)
		}
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert quiz: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, question_count, per_page, shuffle_questions, shuffle_answers
		 FROM quizzes WHERE id=$1`, quizID,
	).Scan(&quiz.ID, &quiz.Title, &quiz.QuestionCount, &quiz.PerPage, &quiz.ShuffleQuestions, &quiz.ShuffleAnswers)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT q.id, q.text, a.id, a.text, a.correct
		 FROM questions q JOIN answers a ON a.question_id = q.id
		 WHERE q.quiz_id=$1
		 ORDER BY q.id, a.id`, quizID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var questionID, questionText string
		var answer domain.Answer
		if err := rows.Scan(&questionID, &questionText, &answer.ID, &answer.Text, &answer.Correct); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		n := len(quiz.Questions)
		if n == 0 || quiz.Questions[n-1].ID != questionID {
			quiz.Questions = append(quiz.Questions, domain.Question{ID: questionID, QuizID: quizID, Text: questionText})
			n++
		}
		quiz.Questions[n-1].Answers = append(quiz.Questions[n-1].Answers, answer)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}

func (s *QuizStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, question_count, per_page, shuffle_questions, shuffle_answers
		 FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quiz
	for rows.Next() {
		var q domain.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.QuestionCount, &q.PerPage, &q.ShuffleQuestions, &q.ShuffleAnswers); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
