package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/okotkov/chatrelay/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	pair, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		}
		log.Error().Err(err).Msg("register failed")
		writeError(w, http.StatusInternalServerError, "An error occurred while trying to register")
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	pair, err := h.auth.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Password is incorrect")
		default:
			log.Error().Err(err).Msg("login failed")
			writeError(w, http.StatusInternalServerError, "An error occurred while trying to log in")
		}
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) RenewTokens(w http.ResponseWriter, r *http.Request) {
	var req RenewTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	pair, err := h.auth.RenewTokens(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeRefreshFlowError(w, err, "An error occurred while trying to renew the token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	err := h.auth.ChangePassword(r.Context(), req.RefreshToken, req.OldPassword, req.NewPassword)
	if err != nil {
		h.writeRefreshFlowError(w, err, "An error occurred while trying to change password")
		return
	}

	writeOK(w)
}

func (h *AuthHandler) LogOut(w http.ResponseWriter, r *http.Request) {
	var req LogOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.auth.LogOut(r.Context(), req.RefreshToken); err != nil {
		h.writeRefreshFlowError(w, err, "An error occurred while logging out")
		return
	}

	writeOK(w)
}

func (h *AuthHandler) LogOutAll(w http.ResponseWriter, r *http.Request) {
	var req LogOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.auth.LogOutAll(r.Context(), req.RefreshToken); err != nil {
		h.writeRefreshFlowError(w, err, "An error occurred while logging out")
		return
	}

	writeOK(w)
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.auth.DeleteUser(r.Context(), req.RefreshToken, req.Password); err != nil {
		h.writeRefreshFlowError(w, err, "Failed to delete user")
		return
	}

	writeOK(w)
}

// writeRefreshFlowError maps the shared failure modes of the refresh-token
// flows onto the status taxonomy; anything unexpected becomes a 500 with the
// operation-specific message.
func (h *AuthHandler) writeRefreshFlowError(w http.ResponseWriter, err error, internalMessage string) {
	switch {
	case errors.Is(err, service.ErrInvalidRefreshToken):
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User does not exist")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Password is incorrect")
	default:
		log.Error().Err(err).Msg(internalMessage)
		writeError(w, http.StatusInternalServerError, internalMessage)
	}
}
