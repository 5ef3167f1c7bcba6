package engine

import "quiz-assignment-service/internal/domain"

// Paginate returns the 0-based page of items. Pages past either end are empty.
func Paginate[T any](items []T, page, perPage int) []T {
	if perPage <= 0 || page < 0 || page > len(items)/perPage {
		return items[:0:0]
	}
	lo := clamp(page*perPage, len(items))
	hi := clamp(lo+perPage, len(items))
	return items[lo:hi:hi]
}

func clamp(v, upper int) int {
	if v < 0 {
		return 0
	}
	if v > upper {
		return upper
	}
	return v
}

// Page selects, paginates and orders answers for one page of quiz.
func Page(quiz domain.Quiz, mode Mode, page int) ([]domain.Question, error) {
	questions, err := SelectQuestions(quiz, mode)
	if err != nil {
		return nil, err
	}
	questions = Paginate(questions, page, perPage(quiz))

	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.Answers = OrderAnswers(q, quiz.ShuffleAnswers, mode)
		out[i] = q
	}
	return out, nil
}

// PageCount is the number of non-empty pages the active subset spans.
func PageCount(quiz domain.Quiz, total int) int {
	size := perPage(quiz)
	return (total + size - 1) / size
}

func perPage(quiz domain.Quiz) int {
	if quiz.PerPage <= 0 {
		return domain.DefaultPerPage
	}
	return quiz.PerPage
}
