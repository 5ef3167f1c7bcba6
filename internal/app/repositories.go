package app

import (
	"context"

	"quiz-assignment-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizStore persists authored quizzes.
type QuizStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	// ListQuizzes returns quiz settings only; Questions are left empty.
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	UserByName(ctx context.Context, username string) (domain.User, error)
	UserByID(ctx context.Context, id string) (domain.User, error)
	SetAdmin(ctx context.Context, id string, admin bool) error
}

// AssignmentRepository stores (student, quiz) pairings.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, a domain.Assignment) error
	GetAssignment(ctx context.Context, studentID, quizID string) (domain.Assignment, error)
	ListAssignments(ctx context.Context, studentID string) ([]domain.Assignment, error)
	// CompleteAssignment sets the score only if the assignment is not yet
	// completed, returning domain.ErrAlreadyGraded otherwise.
	CompleteAssignment(ctx context.Context, studentID, quizID string, score int) error
}

// SubmissionRepository stores one chosen answer per (student, question).
type SubmissionRepository interface {
	// UpsertSubmissions rejects writes with domain.ErrAssignmentCompleted once
	// the owning assignment is graded.
	UpsertSubmissions(ctx context.Context, studentID, quizID string, subs []domain.Submission) error
	ListSubmissions(ctx context.Context, studentID string, questionIDs []string) ([]domain.Submission, error)
}

// Locker serializes work on one key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

func assignmentKey(studentID, quizID string) string {
	return "assignment:" + studentID + ":" + quizID
}
