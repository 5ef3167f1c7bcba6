package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"quiz-assignment-service/internal/app"
	"quiz-assignment-service/internal/domain"
)

// Handler ties HTTP routes to the user, admin and quiz use cases.
type Handler struct {
	users   *app.UserService
	admin   *app.AdminService
	quizzes *app.QuizService
	log     *zap.Logger
}

func NewHandler(users *app.UserService, admin *app.AdminService, quizzes *app.QuizService, log *zap.Logger) *Handler {
	return &Handler{users: users, admin: admin, quizzes: quizzes, log: log}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IsAdmin     bool   `json:"is_admin"`
}

type idResponse struct {
	ID string `json:"id"`
}

type assignResponse struct {
	UserID string `json:"user_id"`
	QuizID string `json:"quiz_id"`
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "quiz assignment service"})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

// Register creates a student account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form app.RegisterForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	id, err := h.users.Register(r.Context(), form)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

// Token exchanges credentials for an access token. Both form-encoded and
// JSON bodies are accepted.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(r, &creds); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, r, h.log, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
			return
		}
		creds.Username = r.PostForm.Get("username")
		creds.Password = r.PostForm.Get("password")
	}
	token, isAdmin, err := h.users.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", IsAdmin: isAdmin})
}

func (h *Handler) Promote(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	if err := h.users.Promote(r.Context(), user.ID, r.URL.Query().Get("code")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_admin": true})
}

func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.admin.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	out := make(map[string]domain.QuizInfo, len(quizzes))
	for _, q := range quizzes {
		out[q.ID] = q
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var form app.QuizForm
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	id, err := h.admin.CreateQuiz(r.Context(), form)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *Handler) AdminQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	info, err := h.admin.Quiz(r.Context(), quizID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) AdminQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	view, err := h.quizzes.AdminPage(r.Context(), quizID, page)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r.URL.Query().Get("user"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	quizID, err := parseID(r.URL.Query().Get("quiz"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if _, err := h.admin.Assign(r.Context(), userID, quizID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignResponse{UserID: userID, QuizID: quizID})
}

func (h *Handler) StudentQuizzes(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	assignments, err := h.quizzes.Assignments(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	out := make(map[string]domain.AssignmentInfo, len(assignments))
	for _, a := range assignments {
		out[a.ID] = a
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) StudentQuiz(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	quizID, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	info, err := h.quizzes.Assignment(r.Context(), user.ID, quizID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) StudentQuestions(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	quizID, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	page, err := pageParam(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	view, err := h.quizzes.StudentPage(r.Context(), user.ID, quizID, page)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	quizID, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req domain.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	result, err := h.quizzes.Submit(r.Context(), user.ID, quizID, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	quizID, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	result, err := h.quizzes.Grade(r.Context(), user.ID, quizID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// pathID reads the {id} route parameter, which must be a UUID.
func pathID(r *http.Request) (string, error) {
	return parseID(chi.URLParam(r, "id"))
}

func parseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: bad id %q", domain.ErrInvalidInput, raw)
	}
	return id.String(), nil
}

func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: bad page %q", domain.ErrInvalidInput, raw)
	}
	return page, nil
}
