package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-assignment-service/internal/app"
	"quiz-assignment-service/internal/domain"
)

// maxMessageBytes caps a single inbound websocket frame.
const maxMessageBytes = 64 << 10

// WSHandler runs a student's quiz session over a websocket: the client asks
// for pages, submits answers and finally grades, all against QuizService.
type WSHandler struct {
	users    *app.UserService
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(users *app.UserService, service *app.QuizService, allowedOrigins []string, log *zap.Logger) *WSHandler {
	return &WSHandler{
		users:   users,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type pagePayload struct {
	Page int `json:"page"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ServeWS authenticates the token query parameter, upgrades the connection and
// serves page/submit/grade messages until the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, err := h.users.Authenticate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	info, err := h.service.Assignment(r.Context(), user.ID, quizID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				return
			}
		}
	}()

	// enqueue reports false once the writer has stopped
	enqueue := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	if !enqueue(outboundMessage[any]{Type: "session", Payload: info}) {
		close(send)
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !enqueue(h.dispatch(r, user.ID, quizID, inbound)) {
			break
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, studentID, quizID string, inbound inboundMessage) outboundMessage[any] {
	ctx := r.Context()
	switch inbound.Type {
	case "page":
		var payload pagePayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return wsError(domain.ErrInvalidInput)
			}
		}
		view, err := h.service.StudentPage(ctx, studentID, quizID, payload.Page)
		if err != nil {
			return wsError(err)
		}
		return outboundMessage[any]{Type: "page", Payload: view}
	case "submit":
		var req domain.SubmitRequest
		if err := json.Unmarshal(inbound.Payload, &req); err != nil {
			return wsError(domain.ErrInvalidInput)
		}
		result, err := h.service.Submit(ctx, studentID, quizID, req)
		if err != nil {
			return wsError(err)
		}
		return outboundMessage[any]{Type: "submitted", Payload: result}
	case "grade":
		result, err := h.service.Grade(ctx, studentID, quizID)
		if err != nil {
			return wsError(err)
		}
		return outboundMessage[any]{Type: "graded", Payload: result}
	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{
			Message: "unsupported message type",
			Status:  http.StatusBadRequest,
		}}
	}
}

func wsError(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{
		Message: err.Error(),
		Status:  errorStatus(err),
	}}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
