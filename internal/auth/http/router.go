package http

import (
	"net/http"
	"time"

	"github.com/messagely/backend/internal/auth/service"
	commonhttp "github.com/messagely/backend/internal/common/http"
	"github.com/messagely/backend/internal/common/logger"
)

type registerRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	auth           *service.AuthService
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewHandler(auth *service.AuthService, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{auth: auth, requestTimeout: requestTimeout, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.HandleFunc("/api/auth/register",
		commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(requestTimeout)(h.register)))
	mux.HandleFunc("/api/auth/login",
		commonhttp.RequireMethod(http.MethodPost)(commonhttp.WithTimeout(requestTimeout)(h.login)))
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, tokenResponse{Token: result.AccessToken})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", "")
		return
	}

	if err := commonhttp.ValidateStruct(req); err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{Token: result.AccessToken})
}
