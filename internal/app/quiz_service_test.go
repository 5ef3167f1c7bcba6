package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"quiz-assignment-service/internal/app"
	"quiz-assignment-service/internal/domain"
	"quiz-assignment-service/internal/engine"
	"quiz-assignment-service/internal/infra/memory"
)

const (
	student = "s1"
	quizID  = "quiz-1"
	seed    = int64(42)
)

type fixture struct {
	quiz        domain.Quiz
	assignments *memory.AssignmentStore
	submissions *memory.SubmissionStore
	service     *app.QuizService
}

func newFixture(t *testing.T, pool, count, perPage int) *fixture {
	t.Helper()
	quiz := domain.Quiz{
		ID:               quizID,
		Title:            "Sample",
		QuestionCount:    count,
		PerPage:          perPage,
		ShuffleQuestions: true,
		ShuffleAnswers:   true,
	}
	for i := 1; i <= pool; i++ {
		qid := fmt.Sprintf("q%02d", i)
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:     qid,
			QuizID: quizID,
			Text:   "Question " + qid,
			Answers: []domain.Answer{
				{ID: qid + "-a1", Text: "right", Correct: true},
				{ID: qid + "-a2", Text: "wrong"},
				{ID: qid + "-a3", Text: "wrong too"},
			},
		})
	}

	quizRepo := memory.NewQuizRepository(memory.NewQuizStore(quiz), time.Minute)
	assignments := memory.NewAssignmentStore()
	submissions := memory.NewSubmissionStore(assignments)
	if err := assignments.CreateAssignment(context.Background(), domain.Assignment{
		StudentID: student, QuizID: quizID, Seed: seed, Score: domain.Ungraded,
	}); err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	return &fixture{
		quiz:        quiz,
		assignments: assignments,
		submissions: submissions,
		service:     app.NewQuizService(quizRepo, assignments, submissions, memory.NewLocker(time.Second), zap.NewNop()),
	}
}

// position finds where answer sits on the student's page.
func (f *fixture) position(t *testing.T, page, questionIdx int, correct bool) int {
	t.Helper()
	questions, err := engine.Page(f.quiz, engine.Student{Seed: seed}, page)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	for i, a := range questions[questionIdx].Answers {
		if a.Correct == correct {
			return i
		}
	}
	t.Fatalf("no matching answer")
	return -1
}

func (f *fixture) answerPage(t *testing.T, page int, correct bool) domain.SubmitResult {
	t.Helper()
	view, err := f.service.StudentPage(context.Background(), student, quizID, page)
	if err != nil {
		t.Fatalf("student page %d: %v", page, err)
	}
	req := domain.SubmitRequest{Page: page}
	for i := range view.Questions {
		req.Answers = append(req.Answers, domain.Selection{QuestionIndex: i, AnswerIndex: f.position(t, page, i, correct)})
	}
	result, err := f.service.Submit(context.Background(), student, quizID, req)
	if err != nil {
		t.Fatalf("submit page %d: %v", page, err)
	}
	return result
}

func TestStudentPagesCoverSubsetOnce(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	ctx := context.Background()

	active, err := engine.SelectQuestions(f.quiz, engine.Student{Seed: seed})
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	seen := map[string]int{}
	for page := 0; page < 3; page++ {
		view, err := f.service.StudentPage(ctx, student, quizID, page)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if view.Pages != 2 {
			t.Fatalf("expected 2 pages, got %d", view.Pages)
		}
		for _, q := range view.Questions {
			seen[q.ID]++
			if q.Selected != -1 {
				t.Fatalf("expected no selection yet on %s", q.ID)
			}
			for _, a := range q.Answers {
				if a.Correct != nil {
					t.Fatalf("student view exposed correct flag on %s", a.ID)
				}
			}
		}
	}
	if len(seen) != len(active) {
		t.Fatalf("pages cover %d questions, subset has %d", len(seen), len(active))
	}
	for _, q := range active {
		if seen[q.ID] != 1 {
			t.Fatalf("question %s seen %d times", q.ID, seen[q.ID])
		}
	}
}

func TestStudentPageShowsPriorSelection(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, student, quizID, domain.SubmitRequest{
		Page:    0,
		Answers: []domain.Selection{{QuestionIndex: 1, AnswerIndex: 2}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	view, err := f.service.StudentPage(ctx, student, quizID, 0)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if view.Questions[0].Selected != -1 || view.Questions[1].Selected != 2 {
		t.Fatalf("unexpected selections %d %d", view.Questions[0].Selected, view.Questions[1].Selected)
	}
}

func TestSubmitReportsCompletion(t *testing.T) {
	f := newFixture(t, 5, 3, 2)

	first := f.answerPage(t, 0, true)
	if !first.PageCompleted || first.QuizCompleted {
		t.Fatalf("unexpected result after page 0: %+v", first)
	}
	second := f.answerPage(t, 1, true)
	if !second.PageCompleted || !second.QuizCompleted {
		t.Fatalf("unexpected result after page 1: %+v", second)
	}

	partial, err := f.service.Submit(context.Background(), student, quizID, domain.SubmitRequest{Page: 0})
	if err != nil {
		t.Fatalf("empty submit: %v", err)
	}
	if !partial.PageCompleted || !partial.QuizCompleted {
		t.Fatalf("empty submit should report existing state: %+v", partial)
	}
}

func TestSubmitOutOfRangeWritesNothing(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	ctx := context.Background()

	cases := []domain.SubmitRequest{
		{Page: 0, Answers: []domain.Selection{{QuestionIndex: 0, AnswerIndex: 0}, {QuestionIndex: 2, AnswerIndex: 0}}},
		{Page: 0, Answers: []domain.Selection{{QuestionIndex: 0, AnswerIndex: 0}, {QuestionIndex: 1, AnswerIndex: 3}}},
		{Page: 0, Answers: []domain.Selection{{QuestionIndex: 0, AnswerIndex: 0}, {QuestionIndex: -1, AnswerIndex: 0}}},
		{Page: 5, Answers: []domain.Selection{{QuestionIndex: 0, AnswerIndex: 0}}},
	}
	for i, req := range cases {
		if _, err := f.service.Submit(ctx, student, quizID, req); !errors.Is(err, domain.ErrOutOfRangeSelection) {
			t.Fatalf("case %d: expected ErrOutOfRangeSelection, got %v", i, err)
		}
	}

	active, _ := engine.SelectQuestions(f.quiz, engine.Student{Seed: seed})
	ids := make([]string, len(active))
	for i, q := range active {
		ids[i] = q.ID
	}
	subs, err := f.submissions.ListSubmissions(ctx, student, ids)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("rejected submits must not write, found %+v", subs)
	}
}

func TestSubmitDuplicatePositionLastWins(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	ctx := context.Background()

	if _, err := f.service.Submit(ctx, student, quizID, domain.SubmitRequest{
		Page:    0,
		Answers: []domain.Selection{{QuestionIndex: 0, AnswerIndex: 0}, {QuestionIndex: 0, AnswerIndex: 2}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	view, _ := f.service.StudentPage(ctx, student, quizID, 0)
	if view.Questions[0].Selected != 2 {
		t.Fatalf("expected last selection to win, got %d", view.Questions[0].Selected)
	}
}

func TestSubmitUnassigned(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	_, err := f.service.Submit(context.Background(), "stranger", quizID, domain.SubmitRequest{})
	if !errors.Is(err, domain.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestGradeRequiresEveryQuestion(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	ctx := context.Background()

	f.answerPage(t, 0, true)
	if _, err := f.service.Grade(ctx, student, quizID); !errors.Is(err, domain.ErrIncompleteSubmissions) {
		t.Fatalf("expected ErrIncompleteSubmissions, got %v", err)
	}
	a, _ := f.assignments.GetAssignment(ctx, student, quizID)
	if a.Completed || a.Score != domain.Ungraded {
		t.Fatalf("failed grade changed state: %+v", a)
	}

	f.answerPage(t, 1, false)
	result, err := f.service.Grade(ctx, student, quizID)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if !result.Completed || result.Score != 2 {
		t.Fatalf("expected score 2, got %+v", result)
	}
}

func TestGradeIsOneShot(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	ctx := context.Background()
	f.answerPage(t, 0, true)
	f.answerPage(t, 1, true)

	if _, err := f.service.Grade(ctx, student, quizID); err != nil {
		t.Fatalf("grade: %v", err)
	}
	if _, err := f.service.Grade(ctx, student, quizID); !errors.Is(err, domain.ErrAlreadyGraded) {
		t.Fatalf("expected ErrAlreadyGraded, got %v", err)
	}
	_, err := f.service.Submit(ctx, student, quizID, domain.SubmitRequest{
		Page:    0,
		Answers: []domain.Selection{{QuestionIndex: 0, AnswerIndex: 0}},
	})
	if !errors.Is(err, domain.ErrAssignmentCompleted) {
		t.Fatalf("expected ErrAssignmentCompleted, got %v", err)
	}

	info, err := f.service.Assignment(ctx, student, quizID)
	if err != nil {
		t.Fatalf("assignment: %v", err)
	}
	if !info.Completed || info.Score != 3 {
		t.Fatalf("unexpected assignment info %+v", info)
	}
}

func TestConcurrentGradersOneWins(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	f.answerPage(t, 0, true)
	f.answerPage(t, 1, true)

	var wins, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.Grade(context.Background(), student, quizID)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrAlreadyGraded):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 || rejected.Load() != 15 {
		t.Fatalf("expected 1 win and 15 rejections, got %d/%d", wins.Load(), rejected.Load())
	}
}

func TestGradeZeroQuestionQuiz(t *testing.T) {
	f := newFixture(t, 3, 0, 2)
	result, err := f.service.Grade(context.Background(), student, quizID)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if result.Score != 0 || !result.Completed {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPoolExhausted(t *testing.T) {
	f := newFixture(t, 2, 3, 2)
	if _, err := f.service.StudentPage(context.Background(), student, quizID, 0); !errors.Is(err, domain.ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
	if _, err := f.service.Grade(context.Background(), student, quizID); !errors.Is(err, domain.ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted on grade, got %v", err)
	}
}

func TestAdminPageShowsWholePool(t *testing.T) {
	f := newFixture(t, 5, 2, 2)
	ctx := context.Background()

	var ids []string
	for page := 0; page < 3; page++ {
		view, err := f.service.AdminPage(ctx, quizID, page)
		if err != nil {
			t.Fatalf("admin page: %v", err)
		}
		if view.Pages != 3 {
			t.Fatalf("expected 3 pages over the pool, got %d", view.Pages)
		}
		for _, q := range view.Questions {
			ids = append(ids, q.ID)
			if q.Answers[0].Correct == nil || !*q.Answers[0].Correct {
				t.Fatalf("admin view must mark the correct answer first in id order: %+v", q.Answers)
			}
		}
	}
	want := []string{"q01", "q02", "q03", "q04", "q05"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestAssignmentsList(t *testing.T) {
	f := newFixture(t, 5, 3, 2)
	list, err := f.service.Assignments(context.Background(), student)
	if err != nil {
		t.Fatalf("assignments: %v", err)
	}
	if len(list) != 1 || list[0].ID != quizID || list[0].Score != domain.Ungraded {
		t.Fatalf("unexpected list %+v", list)
	}
	if list, _ := f.service.Assignments(context.Background(), "nobody"); len(list) != 0 {
		t.Fatalf("expected no assignments, got %+v", list)
	}
}
