package auth

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/relay/core/response"
	"github.com/dmitrymomot/relay/storage"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  storage.User `json:"user"`
}

// HandleRegister handles POST /api/v1/auth/register.
func (s *Service) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		response.Error(w, http.StatusBadRequest, "username, email, and a password of at least 8 characters are required")
		return
	}

	user, token, err := s.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken):
		response.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		response.Error(w, http.StatusInternalServerError, "registration failed")
		return
	}

	_ = response.JSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

// HandleLogin handles POST /api/v1/auth/login.
func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		response.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	_ = response.JSON(w, http.StatusOK, authResponse{Token: token, User: user})
}
