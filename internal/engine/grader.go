package engine

import (
	"fmt"

	"quiz-assignment-service/internal/domain"
)

// Resolve maps a positional selection on page to the question and answer it names.
func Resolve(page []domain.Question, sel domain.Selection) (domain.Question, domain.Answer, error) {
	if sel.QuestionIndex < 0 || sel.QuestionIndex >= len(page) {
		return domain.Question{}, domain.Answer{}, fmt.Errorf("question %d of %d: %w", sel.QuestionIndex, len(page), domain.ErrOutOfRangeSelection)
	}
	question := page[sel.QuestionIndex]
	if sel.AnswerIndex < 0 || sel.AnswerIndex >= len(question.Answers) {
		return domain.Question{}, domain.Answer{}, fmt.Errorf("answer %d of %d: %w", sel.AnswerIndex, len(question.Answers), domain.ErrOutOfRangeSelection)
	}
	return question, question.Answers[sel.AnswerIndex], nil
}

// Score counts correct submissions over the selected questions. Every question
// must have exactly one submission and no submission may fall outside the set.
func Score(questions []domain.Question, submissions []domain.Submission) (int, error) {
	correct := make(map[string]string, len(questions))
	for _, q := range questions {
		correct[q.ID] = correctAnswer(q)
	}

	if len(submissions) != len(questions) {
		return 0, fmt.Errorf("%d of %d answered: %w", len(submissions), len(questions), domain.ErrIncompleteSubmissions)
	}

	seen := make(map[string]struct{}, len(submissions))
	score := 0
	for _, sub := range submissions {
		answerID, ok := correct[sub.QuestionID]
		if !ok {
			return 0, fmt.Errorf("submission for unselected question %s: %w", sub.QuestionID, domain.ErrIncompleteSubmissions)
		}
		if _, dup := seen[sub.QuestionID]; dup {
			return 0, fmt.Errorf("duplicate submission for question %s: %w", sub.QuestionID, domain.ErrIncompleteSubmissions)
		}
		seen[sub.QuestionID] = struct{}{}
		if answerID != "" && sub.AnswerID == answerID {
			score++
		}
	}
	return score, nil
}

func correctAnswer(q domain.Question) string {
	for _, a := range q.Answers {
		if a.Correct {
			return a.ID
		}
	}
	return ""
}
