package app

import (
	"context"
	"math/rand"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"quiz-assignment-service/internal/domain"
)

// AdminService covers quiz authoring and assignment.
type AdminService struct {
	quizzes     QuizRepository
	store       QuizStore
	users       UserRepository
	assignments AssignmentRepository
	validate    *validator.Validate
	seed        func() int64
	log         *zap.Logger
}

func NewAdminService(quizzes QuizRepository, store QuizStore, users UserRepository, assignments AssignmentRepository, log *zap.Logger) *AdminService {
	return &AdminService{
		quizzes:     quizzes,
		store:       store,
		users:       users,
		assignments: assignments,
		validate:    newValidator(),
		seed:        func() int64 { return rand.Int63n(1 << 31) },
		log:         log,
	}
}

// CreateQuiz validates and stores a quiz, returning its ID.
func (s *AdminService) CreateQuiz(ctx context.Context, form QuizForm) (string, error) {
	if err := validateForm(s.validate, form); err != nil {
		return "", err
	}
	quiz, err := form.build()
	if err != nil {
		return "", err
	}
	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return "", err
	}
	s.log.Info("quiz created",
		zap.String("quiz", quiz.ID),
		zap.Int("questions", len(quiz.Questions)),
	)
	return quiz.ID, nil
}

func (s *AdminService) ListQuizzes(ctx context.Context) ([]domain.QuizInfo, error) {
	quizzes, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QuizInfo, len(quizzes))
	for i, q := range quizzes {
		out[i] = q.Info()
	}
	return out, nil
}

func (s *AdminService) Quiz(ctx context.Context, quizID string) (domain.QuizInfo, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizInfo{}, err
	}
	return quiz.Info(), nil
}

// Assign pairs a student with a quiz under a freshly drawn seed.
func (s *AdminService) Assign(ctx context.Context, studentID, quizID string) (domain.Assignment, error) {
	if _, err := s.users.UserByID(ctx, studentID); err != nil {
		return domain.Assignment{}, err
	}
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Assignment{}, err
	}
	assignment := domain.Assignment{
		StudentID: studentID,
		QuizID:    quizID,
		Seed:      s.seed(),
		Score:     domain.Ungraded,
	}
	if err := s.assignments.CreateAssignment(ctx, assignment); err != nil {
		return domain.Assignment{}, err
	}
	s.log.Info("quiz assigned", zap.String("student", studentID), zap.String("quiz", quizID))
	return assignment, nil
}
