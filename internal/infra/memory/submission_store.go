package memory

import (
	"context"
	"sync"

	"quiz-assignment-service/internal/domain"
)

type submissionKey struct {
	studentID  string
	questionID string
}

// SubmissionStore is an in-memory implementation of app.SubmissionRepository.
// It consults the assignment store so writes to graded assignments are refused.
type SubmissionStore struct {
	assignments *AssignmentStore

	mu   sync.RWMutex
	subs map[submissionKey]string
}

func NewSubmissionStore(assignments *AssignmentStore) *SubmissionStore {
	return &SubmissionStore{
		assignments: assignments,
		subs:        make(map[submissionKey]string),
	}
}

func (s *SubmissionStore) UpsertSubmissions(_ context.Context, studentID, quizID string, subs []domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed, err := s.assignments.completed(studentID, quizID)
	if err != nil {
		return err
	}
	if completed {
		return domain.ErrAssignmentCompleted
	}
	for _, sub := range subs {
		s.subs[submissionKey{studentID, sub.QuestionID}] = sub.AnswerID
	}
	return nil
}

func (s *SubmissionStore) ListSubmissions(_ context.Context, studentID string, questionIDs []string) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0, len(questionIDs))
	for _, qid := range questionIDs {
		if answerID, ok := s.subs[submissionKey{studentID, qid}]; ok {
			out = append(out, domain.Submission{StudentID: studentID, QuestionID: qid, AnswerID: answerID})
		}
	}
	return out, nil
}
