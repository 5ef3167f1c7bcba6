// Package engine selects, pages, shuffles and scores quiz questions.
//
// Every function here is pure: the same quiz, mode and page always yield the
// same result, so callers recompute views on each request instead of storing them.
package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"quiz-assignment-service/internal/domain"
)

// Mode is either Admin or Student. The set is closed.
type Mode interface {
	mode()
}

// Admin sees the whole pool in canonical order.
type Admin struct{}

// Student sees the subset derived from the assignment seed.
type Student struct {
	Seed int64
}

func (Admin) mode()   {}
func (Student) mode() {}

// SelectQuestions returns the questions active for mode, in display order.
func SelectQuestions(quiz domain.Quiz, mode Mode) ([]domain.Question, error) {
	pool := sortedQuestions(quiz.Questions)

	switch m := mode.(type) {
	case Admin:
		return pool, nil
	case Student:
		count := quiz.QuestionCount
		if count < 0 {
			count = 0
		}
		if count > len(pool) {
			return nil, fmt.Errorf("quiz %s wants %d of %d questions: %w", quiz.ID, count, len(pool), domain.ErrPoolExhausted)
		}
		if !quiz.ShuffleQuestions {
			return pool[:count], nil
		}
		return sample(pool, count, rand.New(rand.NewSource(m.Seed))), nil
	default:
		return nil, fmt.Errorf("unsupported mode %T", mode)
	}
}

// sample draws count distinct items with a partial Fisher-Yates pass. pool is reordered.
func sample(pool []domain.Question, count int, rng *rand.Rand) []domain.Question {
	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}

func sortedQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
