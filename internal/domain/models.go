package domain

// Ungraded is the score carried by an assignment until it is graded.
const Ungraded = -1

// DefaultPerPage is used when a quiz is authored without a page size.
const DefaultPerPage = 10

// User is an account that can log in; admins author and assign quizzes.
type User struct {
	ID             string
	Username       string
	HashedPassword string
	IsAdmin        bool
}

// Answer is one choice of a question.
type Answer struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models an MCQ question with exactly one correct answer.
type Question struct {
	ID      string   `json:"id"`
	QuizID  string   `json:"quizId"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// Quiz owns a pool of questions from which each assignment draws QuestionCount.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	QuestionCount    int        `json:"questionCount"`
	PerPage          int        `json:"perPage"`
	ShuffleQuestions bool       `json:"shuffleQuestions"`
	ShuffleAnswers   bool       `json:"shuffleAnswers"`
	Questions        []Question `json:"questions"`
}

// Info is the quiz metadata without its question pool.
func (q Quiz) Info() QuizInfo {
	return QuizInfo{
		ID:               q.ID,
		Title:            q.Title,
		QuestionCount:    q.QuestionCount,
		PerPage:          q.PerPage,
		ShuffleQuestions: q.ShuffleQuestions,
		ShuffleAnswers:   q.ShuffleAnswers,
	}
}

// Assignment pairs a student with a quiz. Seed never changes after creation.
type Assignment struct {
	StudentID string
	QuizID    string
	Seed      int64
	Completed bool
	Score     int
}

// Submission is the answer a student chose for one question.
type Submission struct {
	StudentID  string
	QuestionID string
	AnswerID   string
}

// QuizInfo is the wire view of a quiz's settings.
type QuizInfo struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	QuestionCount    int    `json:"question_count"`
	PerPage          int    `json:"per_page"`
	ShuffleQuestions bool   `json:"shuffle_questions"`
	ShuffleAnswers   bool   `json:"shuffle_answers"`
}

// AssignmentInfo is a student's view of one assigned quiz.
type AssignmentInfo struct {
	QuizInfo
	Completed bool `json:"completed"`
	Score     int  `json:"score"`
}

// AnswerView is an answer as displayed on a page. Correct is only set for admins.
type AnswerView struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct *bool  `json:"correct,omitempty"`
}

// QuestionView is a question as displayed on a page. Selected is the position of
// the prior submission, or -1.
type QuestionView struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Answers  []AnswerView `json:"answers"`
	Selected int          `json:"selected"`
}

// PageView is one page of a quiz as rendered for admins or students.
type PageView struct {
	QuizInfo
	Page      int            `json:"page"`
	Pages     int            `json:"pages"`
	Questions []QuestionView `json:"questions"`
}

// Selection points at an answer by its position on a page.
type Selection struct {
	QuestionIndex int `json:"question_idx"`
	AnswerIndex   int `json:"answer_idx"`
}

// SubmitRequest carries the positional choices made on one page.
type SubmitRequest struct {
	Page    int         `json:"page_idx"`
	Answers []Selection `json:"answers"`
}

// SubmitResult reports whether the page and the whole quiz are now fully answered.
type SubmitResult struct {
	PageCompleted bool `json:"page_completed"`
	QuizCompleted bool `json:"quiz_completed"`
}

// GradeResult is returned once an assignment is graded.
type GradeResult struct {
	QuizID    string `json:"quiz_id"`
	Completed bool   `json:"completed"`
	Score     int    `json:"score"`
}
