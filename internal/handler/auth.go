package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/service"
)

// AuthHandler serves registration, login and the current-user lookup.
//
// There is no logout endpoint: tokens are stateless, so logging out is the
// client discarding its token.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type registerRequest struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarURL"`
}

type registerResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/register
// REQUEST BODY: {"email":"...","password":"...","displayName":"...","avatarURL":"..."}
// RESPONSE: 201 {"message":"user registered successfully","id":"..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Message: "user registered successfully",
		ID:      user.ID,
	})
}

// HandleLogin exchanges credentials for a bearer token.
//
// HTTP: POST /api/login
// RESPONSE: 200 {"token":"<jwt>","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}

// HandleUser returns the authenticated caller.
//
// HTTP: GET /api/user
func (h *AuthHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}
