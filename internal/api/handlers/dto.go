package handlers

import (
	"net/mail"
	"strings"
)

// Request bodies validate field by field; the first failing rule's message is
// returned and becomes the 400 response.

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r *RegisterRequest) Validate() string {
	if r.Email == "" {
		return "Email is required"
	}
	if !validEmail(r.Email) {
		return "Wrong email format"
	}
	if len(r.Password) < 8 {
		return "Password is too short"
	}
	if len(r.Password) > 255 {
		return "Password is too long"
	}
	r.FirstName = strings.TrimSpace(r.FirstName)
	if r.FirstName == "" {
		return "First name is required"
	}
	if len(r.FirstName) > 255 {
		return "First name is too long"
	}
	r.LastName = strings.TrimSpace(r.LastName)
	if r.LastName == "" {
		return "Last name is required"
	}
	if len(r.LastName) > 255 {
		return "Last name is too long"
	}
	return ""
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() string {
	if r.Email == "" {
		return "Email is required to log in"
	}
	if !validEmail(r.Email) {
		return "Wrong email format"
	}
	if r.Password == "" {
		return "Password is required to log in"
	}
	return ""
}

type RenewTokensRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *RenewTokensRequest) Validate() string {
	if r.RefreshToken == "" {
		return "A valid refresh token is required"
	}
	return ""
}

type ChangePasswordRequest struct {
	RefreshToken string `json:"refreshToken"`
	OldPassword  string `json:"oldPassword"`
	NewPassword  string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() string {
	if r.RefreshToken == "" {
		return "A valid refresh token is required"
	}
	if r.OldPassword == "" {
		return "Your old password is required"
	}
	if len(r.NewPassword) < 8 {
		return "Password is too short"
	}
	if len(r.NewPassword) > 255 {
		return "Password is too long"
	}
	return ""
}

type LogOutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r *LogOutRequest) Validate() string {
	if r.RefreshToken == "" {
		return "A valid refresh token is required"
	}
	return ""
}

type DeleteAccountRequest struct {
	RefreshToken string `json:"refreshToken"`
	Password     string `json:"password"`
}

func (r *DeleteAccountRequest) Validate() string {
	if r.RefreshToken == "" {
		return "A valid refresh token is required"
	}
	if r.Password == "" {
		return "Password is required"
	}
	return ""
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
