package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-assignment-service/internal/domain"
)

type assignmentKey struct {
	studentID string
	quizID    string
}

// AssignmentStore is an in-memory implementation of app.AssignmentRepository.
type AssignmentStore struct {
	mu          sync.RWMutex
	assignments map[assignmentKey]domain.Assignment
}

func NewAssignmentStore() *AssignmentStore {
	return &AssignmentStore{assignments: make(map[assignmentKey]domain.Assignment)}
}

func (s *AssignmentStore) CreateAssignment(_ context.Context, a domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assignmentKey{a.StudentID, a.QuizID}
	if _, ok := s.assignments[key]; ok {
		return domain.ErrAssignmentExists
	}
	s.assignments[key] = a
	return nil
}

func (s *AssignmentStore) GetAssignment(_ context.Context, studentID, quizID string) (domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[assignmentKey{studentID, quizID}]
	if !ok {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	return a, nil
}

func (s *AssignmentStore) ListAssignments(_ context.Context, studentID string) ([]domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Assignment
	for key, a := range s.assignments {
		if key.studentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuizID < out[j].QuizID })
	return out, nil
}

// CompleteAssignment is a compare-and-set on the completed flag.
func (s *AssignmentStore) CompleteAssignment(_ context.Context, studentID, quizID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assignmentKey{studentID, quizID}
	a, ok := s.assignments[key]
	if !ok {
		return domain.ErrAssignmentNotFound
	}
	if a.Completed {
		return domain.ErrAlreadyGraded
	}
	a.Completed = true
	a.Score = score
	s.assignments[key] = a
	return nil
}

func (s *AssignmentStore) completed(studentID, quizID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[assignmentKey{studentID, quizID}]
	if !ok {
		return false, domain.ErrAssignmentNotFound
	}
	return a.Completed, nil
}
