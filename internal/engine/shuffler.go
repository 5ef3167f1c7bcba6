package engine

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
	"sort"

	"quiz-assignment-service/internal/domain"
)

// OrderAnswers returns a copy of the question's answers in display order.
// With shuffle set, students get a permutation derived only from their seed
// and the question ID, so it does not depend on which other questions were shown.
func OrderAnswers(question domain.Question, shuffle bool, mode Mode) []domain.Answer {
	answers := make([]domain.Answer, len(question.Answers))
	copy(answers, question.Answers)
	sort.SliceStable(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })

	student, ok := mode.(Student)
	if !ok || !shuffle {
		return answers
	}
	rng := rand.New(rand.NewSource(AnswerSeed(student.Seed, question.ID)))
	rng.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })
	return answers
}

// AnswerSeed derives the per-question shuffle seed (FNV-1a over seed and question ID).
func AnswerSeed(seed int64, questionID string) int64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seed))

	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	_, _ = h.Write([]byte(questionID))
	return int64(h.Sum64())
}
