package http

import (
	"net/http"
	"strings"
	"time"

	commonhttp "github.com/messagely/backend/internal/common/http"
	"github.com/messagely/backend/internal/common/jwtverify"
	"github.com/messagely/backend/internal/common/logger"
	"github.com/messagely/backend/internal/message/domain"
	"github.com/messagely/backend/internal/message/service"
)

type sendRequest struct {
	ToUsername string `json:"to_username" validate:"required"`
	Body       string `json:"body" validate:"required"`
}

type userSummaryResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type messageResponse struct {
	ID           string     `json:"id"`
	FromUsername string     `json:"from_username"`
	ToUsername   string     `json:"to_username"`
	Body         string     `json:"body"`
	SentAt       time.Time  `json:"sent_at"`
	ReadAt       *time.Time `json:"read_at"`
}

type detailResponse struct {
	ID       string              `json:"id"`
	Body     string              `json:"body"`
	SentAt   time.Time           `json:"sent_at"`
	ReadAt   *time.Time          `json:"read_at"`
	FromUser userSummaryResponse `json:"from_user"`
	ToUser   userSummaryResponse `json:"to_user"`
}

type Handler struct {
	messages *service.MessageService
	log      *logger.Logger
}

func NewHandler(messages *service.MessageService, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{messages: messages, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages",
		commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(requestTimeout)(h.send)))
	mux.HandleFunc("/api/messages/", commonhttp.WithTimeout(requestTimeout)(h.route))
	return mux
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", "")
		return
	}

	var req sendRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("send failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	message, err := h.messages.Send(r.Context(), claims.Username, req.ToUsername, req.Body)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toMessageResponse(message))
}

// route dispatches GET /api/messages/{id} and POST /api/messages/{id}/read.
func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/messages/")
	parts := strings.Split(rest, "/")

	id := parts[0]
	if id == "" {
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidPath, "message id is required", "")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, id)
	case len(parts) == 2 && parts[1] == "read" && r.Method == http.MethodPost:
		h.markRead(w, r, id)
	case len(parts) == 1 || (len(parts) == 2 && parts[1] == "read"):
		commonhttp.WriteErrorEnvelope(w, http.StatusMethodNotAllowed, commonhttp.CodeMethodNotAllowed, "method not allowed", "")
	default:
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "unknown path", "")
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", "")
		return
	}

	detail, err := h.messages.Get(r.Context(), id, claims.Username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toDetailResponse(detail))
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request, id string) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeMissingAuthorization, "unauthorized", "")
		return
	}

	detail, err := h.messages.MarkRead(r.Context(), id, claims.Username)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toDetailResponse(detail))
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:           m.ID,
		FromUsername: m.FromUsername,
		ToUsername:   m.ToUsername,
		Body:         m.Body,
		SentAt:       m.SentAt,
		ReadAt:       m.ReadAt,
	}
}

func toDetailResponse(d domain.Detail) detailResponse {
	return detailResponse{
		ID:     d.ID,
		Body:   d.Body,
		SentAt: d.SentAt,
		ReadAt: d.ReadAt,
		FromUser: userSummaryResponse{
			Username:  d.FromUser.Username,
			FirstName: d.FromUser.FirstName,
			LastName:  d.FromUser.LastName,
			Phone:     d.FromUser.Phone,
		},
		ToUser: userSummaryResponse{
			Username:  d.ToUser.Username,
			FirstName: d.ToUser.FirstName,
			LastName:  d.ToUser.LastName,
			Phone:     d.ToUser.Phone,
		},
	}
}
