package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"quiz-assignment-service/internal/domain"
	"quiz-assignment-service/internal/engine"
	"quiz-assignment-service/internal/metrics"
)

// QuizService contains the page, submit and grade use cases.
type QuizService struct {
	quizzes     QuizRepository
	assignments AssignmentRepository
	submissions SubmissionRepository
	locks       Locker
	log         *zap.Logger
}

func NewQuizService(quizzes QuizRepository, assignments AssignmentRepository, submissions SubmissionRepository, locks Locker, log *zap.Logger) *QuizService {
	return &QuizService{
		quizzes:     quizzes,
		assignments: assignments,
		submissions: submissions,
		locks:       locks,
		log:         log,
	}
}

// AdminPage renders a page of the full pool with correct answers marked.
func (s *QuizService) AdminPage(ctx context.Context, quizID string, page int) (domain.PageView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.PageView{}, err
	}
	questions, err := engine.Page(quiz, engine.Admin{}, page)
	if err != nil {
		return domain.PageView{}, err
	}
	pages := engine.PageCount(quiz, len(quiz.Questions))
	return render(quiz, questions, page, pages, true, nil), nil
}

// StudentPage renders a page of the student's active subset with prior choices marked.
func (s *QuizService) StudentPage(ctx context.Context, studentID, quizID string, page int) (domain.PageView, error) {
	assignment, err := s.assignments.GetAssignment(ctx, studentID, quizID)
	if err != nil {
		return domain.PageView{}, err
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.PageView{}, err
	}
	questions, err := engine.Page(quiz, engine.Student{Seed: assignment.Seed}, page)
	if err != nil {
		return domain.PageView{}, err
	}
	subs, err := s.submissions.ListSubmissions(ctx, studentID, questionIDs(questions))
	if err != nil {
		return domain.PageView{}, err
	}
	pages := engine.PageCount(quiz, max(quiz.QuestionCount, 0))
	return render(quiz, questions, page, pages, false, chosenAnswers(subs)), nil
}

// Submit records the answers picked on one page. Positions are resolved against
// the page recomputed from the assignment seed; one bad position rejects the
// whole request.
func (s *QuizService) Submit(ctx context.Context, studentID, quizID string, req domain.SubmitRequest) (domain.SubmitResult, error) {
	unlock, err := s.locks.Lock(ctx, assignmentKey(studentID, quizID))
	if err != nil {
		return domain.SubmitResult{}, err
	}
	defer unlock()

	assignment, err := s.assignments.GetAssignment(ctx, studentID, quizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if assignment.Completed {
		return domain.SubmitResult{}, domain.ErrAssignmentCompleted
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	mode := engine.Student{Seed: assignment.Seed}
	page, err := engine.Page(quiz, mode, req.Page)
	if err != nil {
		return domain.SubmitResult{}, err
	}

	subs := make([]domain.Submission, 0, len(req.Answers))
	index := make(map[string]int, len(req.Answers))
	for _, sel := range req.Answers {
		question, answer, err := engine.Resolve(page, sel)
		if err != nil {
			return domain.SubmitResult{}, err
		}
		sub := domain.Submission{StudentID: studentID, QuestionID: question.ID, AnswerID: answer.ID}
		if i, ok := index[question.ID]; ok {
			subs[i] = sub
			continue
		}
		index[question.ID] = len(subs)
		subs = append(subs, sub)
	}

	if len(subs) > 0 {
		if err := s.submissions.UpsertSubmissions(ctx, studentID, quizID, subs); err != nil {
			return domain.SubmitResult{}, err
		}
		metrics.SubmissionsRecorded.Add(float64(len(subs)))
	}

	active, err := engine.SelectQuestions(quiz, mode)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	recorded, err := s.submissions.ListSubmissions(ctx, studentID, questionIDs(active))
	if err != nil {
		return domain.SubmitResult{}, err
	}
	answered := chosenAnswers(recorded)

	result := domain.SubmitResult{
		PageCompleted: true,
		QuizCompleted: len(answered) == len(active),
	}
	for _, q := range page {
		if _, ok := answered[q.ID]; !ok {
			result.PageCompleted = false
			break
		}
	}

	s.log.Debug("answers recorded",
		zap.String("student", studentID),
		zap.String("quiz", quizID),
		zap.Int("page", req.Page),
		zap.Int("count", len(subs)),
	)
	return result, nil
}

// Grade scores the assignment exactly once.
func (s *QuizService) Grade(ctx context.Context, studentID, quizID string) (domain.GradeResult, error) {
	result, err := s.grade(ctx, studentID, quizID)
	switch {
	case err == nil:
		metrics.GradeAttempts.WithLabelValues("graded").Inc()
		s.log.Info("assignment graded",
			zap.String("student", studentID),
			zap.String("quiz", quizID),
			zap.Int("score", result.Score),
		)
	case errors.Is(err, domain.ErrIncompleteSubmissions):
		metrics.GradeAttempts.WithLabelValues("incomplete").Inc()
	case errors.Is(err, domain.ErrAlreadyGraded):
		metrics.GradeAttempts.WithLabelValues("already_graded").Inc()
	default:
		metrics.GradeAttempts.WithLabelValues("error").Inc()
	}
	return result, err
}

func (s *QuizService) grade(ctx context.Context, studentID, quizID string) (domain.GradeResult, error) {
	unlock, err := s.locks.Lock(ctx, assignmentKey(studentID, quizID))
	if err != nil {
		return domain.GradeResult{}, err
	}
	defer unlock()

	assignment, err := s.assignments.GetAssignment(ctx, studentID, quizID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	if assignment.Completed {
		return domain.GradeResult{}, domain.ErrAlreadyGraded
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.GradeResult{}, err
	}
	active, err := engine.SelectQuestions(quiz, engine.Student{Seed: assignment.Seed})
	if err != nil {
		return domain.GradeResult{}, err
	}
	subs, err := s.submissions.ListSubmissions(ctx, studentID, questionIDs(active))
	if err != nil {
		return domain.GradeResult{}, err
	}
	score, err := engine.Score(active, subs)
	if err != nil {
		return domain.GradeResult{}, err
	}
	if err := s.assignments.CompleteAssignment(ctx, studentID, quizID, score); err != nil {
		return domain.GradeResult{}, err
	}
	return domain.GradeResult{QuizID: quizID, Completed: true, Score: score}, nil
}

// Assignments lists the quizzes assigned to a student.
func (s *QuizService) Assignments(ctx context.Context, studentID string) ([]domain.AssignmentInfo, error) {
	assignments, err := s.assignments.ListAssignments(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AssignmentInfo, 0, len(assignments))
	for _, a := range assignments {
		info, err := s.assignmentInfo(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Assignment describes one assigned quiz.
func (s *QuizService) Assignment(ctx context.Context, studentID, quizID string) (domain.AssignmentInfo, error) {
	a, err := s.assignments.GetAssignment(ctx, studentID, quizID)
	if err != nil {
		return domain.AssignmentInfo{}, err
	}
	return s.assignmentInfo(ctx, a)
}

func (s *QuizService) assignmentInfo(ctx context.Context, a domain.Assignment) (domain.AssignmentInfo, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, a.QuizID)
	if err != nil {
		return domain.AssignmentInfo{}, err
	}
	return domain.AssignmentInfo{QuizInfo: quiz.Info(), Completed: a.Completed, Score: a.Score}, nil
}

func render(quiz domain.Quiz, questions []domain.Question, page, pages int, admin bool, chosen map[string]string) domain.PageView {
	views := make([]domain.QuestionView, 0, len(questions))
	for _, q := range questions {
		view := domain.QuestionView{
			ID:       q.ID,
			Text:     q.Text,
			Answers:  make([]domain.AnswerView, 0, len(q.Answers)),
			Selected: -1,
		}
		for i, a := range q.Answers {
			av := domain.AnswerView{ID: a.ID, Text: a.Text}
			if admin {
				correct := a.Correct
				av.Correct = &correct
			}
			if chosen[q.ID] == a.ID {
				view.Selected = i
			}
			view.Answers = append(view.Answers, av)
		}
		views = append(views, view)
	}
	return domain.PageView{QuizInfo: quiz.Info(), Page: page, Pages: pages, Questions: views}
}

func questionIDs(questions []domain.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func chosenAnswers(subs []domain.Submission) map[string]string {
	out := make(map[string]string, len(subs))
	for _, sub := range subs {
		out[sub.QuestionID] = sub.AnswerID
	}
	return out
}
