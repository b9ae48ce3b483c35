package http

import (
	"net/http"
	"strings"
	"time"

	commonhttp "github.com/messagely/backend/internal/common/http"
	"github.com/messagely/backend/internal/common/jwtverify"
	"github.com/messagely/backend/internal/common/logger"
	messagedomain "github.com/messagely/backend/internal/message/domain"
	userdomain "github.com/messagely/backend/internal/user/domain"
	"github.com/messagely/backend/internal/user/service"
)

type summaryResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type profileResponse struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	JoinAt      time.Time `json:"join_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

type sentMessageResponse struct {
	ID     string          `json:"id"`
	Body   string          `json:"body"`
	SentAt time.Time       `json:"sent_at"`
	ReadAt *time.Time      `json:"read_at"`
	ToUser summaryResponse `json:"to_user"`
}

type receivedMessageResponse struct {
	ID       string          `json:"id"`
	Body     string          `json:"body"`
	SentAt   time.Time       `json:"sent_at"`
	ReadAt   *time.Time      `json:"read_at"`
	FromUser summaryResponse `json:"from_user"`
}

type Handler struct {
	users *service.UserService
	log   *logger.Logger
}

func NewHandler(users *service.UserService, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{users: users, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users",
		commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(requestTimeout)(h.list)))
	mux.HandleFunc("/api/users/",
		commonhttp.RequireMethod(http.MethodGet)(commonhttp.WithTimeout(requestTimeout)(h.route)))
	return mux
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.All(r.Context())
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]summaryResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toSummaryResponse(u))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

// route dispatches /api/users/{username}[/messages/from|/messages/to].
func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.Split(rest, "/")

	username := parts[0]
	if username == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "username is required", "")
		return
	}

	switch {
	case len(parts) == 1:
		h.get(w, r, username)
	case len(parts) == 3 && parts[1] == "messages" && parts[2] == "from":
		h.messagesFrom(w, r, username)
	case len(parts) == 3 && parts[1] == "messages" && parts[2] == "to":
		h.messagesTo(w, r, username)
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "unknown path", "")
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, username string) {
	profile, err := h.users.Get(r.Context(), username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, profileResponse{
		Username:    profile.Username,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Phone:       profile.Phone,
		JoinAt:      profile.JoinedAt,
		LastLoginAt: profile.LastLoginAt,
	})
}

func (h *Handler) messagesFrom(w http.ResponseWriter, r *http.Request, username string) {
	if !h.requireSameUser(w, r, username) {
		return
	}

	messages, err := h.users.MessagesFrom(r.Context(), username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]sentMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toSentResponse(m))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) messagesTo(w http.ResponseWriter, r *http.Request, username string) {
	if !h.requireSameUser(w, r, username) {
		return
	}

	messages, err := h.users.MessagesTo(r.Context(), username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	resp := make([]receivedMessageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, toReceivedResponse(m))
	}
	commonhttp.WriteJSON(w, http.StatusOK, resp)
}

// requireSameUser enforces the only authorization rule in scope: a user's
// message views are visible to that user alone.
func (h *Handler) requireSameUser(w http.ResponseWriter, r *http.Request, username string) bool {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", "")
		return false
	}
	if claims.Username != username {
		h.log.Warnf("forbidden access to messages of %s by %s", username, claims.Username)
		commonhttp.WriteErrorEnvelope(w, http.StatusForbidden, "FORBIDDEN", "operation not allowed for this user", "")
		return false
	}
	return true
}

func toSummaryResponse(u userdomain.Summary) summaryResponse {
	return summaryResponse{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

func toSentResponse(m messagedomain.Sent) sentMessageResponse {
	return sentMessageResponse{
		ID:     m.ID,
		Body:   m.Body,
		SentAt: m.SentAt,
		ReadAt: m.ReadAt,
		ToUser: toSummaryResponse(m.ToUser),
	}
}

func toReceivedResponse(m messagedomain.Received) receivedMessageResponse {
	return receivedMessageResponse{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   m.ReadAt,
		FromUser: toSummaryResponse(m.FromUser),
	}
}
