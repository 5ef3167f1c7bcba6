package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"quiz-assignment-service/internal/domain"
)

// AnswerForm is one authored answer.
type AnswerForm struct {
	Text    string `json:"text" validate:"required,max=256"`
	Correct bool   `json:"correct"`
}

// QuestionForm is one authored question; exactly one answer must be correct.
type QuestionForm struct {
	Text    string       `json:"text" validate:"required,max=512"`
	Answers []AnswerForm `json:"answers" validate:"min=2,dive"`
}

// QuizForm is the payload admins submit to author a quiz.
type QuizForm struct {
	Title            string         `json:"title" validate:"required,max=256"`
	QuestionCount    int            `json:"question_count" validate:"gte=0"`
	PerPage          int            `json:"per_page" validate:"gte=0"`
	ShuffleQuestions bool           `json:"shuffle_questions"`
	ShuffleAnswers   bool           `json:"shuffle_answers"`
	Questions        []QuestionForm `json:"questions" validate:"dive"`
}

// RegisterForm is the payload for creating an account.
type RegisterForm struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		q := sl.Current().Interface().(QuestionForm)
		correct := 0
		for _, a := range q.Answers {
			if a.Correct {
				correct++
			}
		}
		if correct != 1 {
			sl.ReportError(q.Answers, "Answers", "answers", "one_correct", "")
		}
	}, QuestionForm{})
	return v
}

func validateForm(v *validator.Validate, form any) error {
	if err := v.Struct(form); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidQuiz, err)
	}
	return nil
}

// build mints time-ordered IDs in authoring order so that sorting by ID
// reproduces the order questions and answers were written in.
func (f QuizForm) build() (domain.Quiz, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return domain.Quiz{}, err
	}
	perPage := f.PerPage
	if perPage == 0 {
		perPage = domain.DefaultPerPage
	}
	quiz := domain.Quiz{
		ID:               id.String(),
		Title:            f.Title,
		QuestionCount:    f.QuestionCount,
		PerPage:          perPage,
		ShuffleQuestions: f.ShuffleQuestions,
		ShuffleAnswers:   f.ShuffleAnswers,
		Questions:        make([]domain.Question, 0, len(f.Questions)),
	}
	for _, qf := range f.Questions {
		qid, err := uuid.NewV7()
		if err != nil {
			return domain.Quiz{}, err
		}
		question := domain.Question{ID: qid.String(), QuizID: quiz.ID, Text: qf.Text}
		for _, af := range qf.Answers {
			aid, err := uuid.NewV7()
			if err != nil {
				return domain.Quiz{}, err
			}
			question.Answers = append(question.Answers, domain.Answer{ID: aid.String(), Text: af.Text, Correct: af.Correct})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	return quiz, nil
}
