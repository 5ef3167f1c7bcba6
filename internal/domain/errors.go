package domain

import "errors"

var (
	// ErrPoolExhausted is returned when a quiz asks for more questions than its pool holds.
	ErrPoolExhausted = errors.New("question count exceeds available questions")
	// ErrOutOfRangeSelection indicates a question or answer position outside the recomputed page.
	ErrOutOfRangeSelection = errors.New("selection out of range")
	// ErrAssignmentCompleted is returned for writes against a graded assignment.
	ErrAssignmentCompleted = errors.New("quiz has already been graded")
	// ErrIncompleteSubmissions indicates not every selected question has exactly one submission.
	ErrIncompleteSubmissions = errors.New("not all questions have been answered")
	// ErrAlreadyGraded is returned by a second grade attempt.
	ErrAlreadyGraded = errors.New("assignment already graded")

	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	ErrUserNotFound = errors.New("user not found")
	// ErrAssignmentNotFound means the student has not been assigned the quiz.
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentExists   = errors.New("assignment already exists")
	ErrUsernameTaken      = errors.New("username already exists")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidQuiz wraps authoring validation failures.
	ErrInvalidQuiz = errors.New("invalid quiz")

	ErrInvalidCredentials = errors.New("could not validate credentials")
	ErrUnauthorized       = errors.New("could not validate token")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidAdminCode   = errors.New("invalid admin code")

	// ErrLockTimeout is returned when a per-assignment lock cannot be taken in time.
	ErrLockTimeout = errors.New("assignment is busy")
)
