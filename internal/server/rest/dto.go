package rest

import "github.com/vtnhan03/final-be/internal/server/models"

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

type passwordRequest struct {
	Password string `json:"password" binding:"required"`
}

type googleAuthRequest struct {
	Token string `json:"token" binding:"required"`
	// UserInfo is accepted for client compatibility; the profile always
	// comes from Google.
	UserInfo map[string]any `json:"userInfo"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type resetPasswordWithCodeRequest struct {
	Email            string `json:"email" binding:"required,email"`
	VerificationCode string `json:"verification_code" binding:"required"`
	NewPassword      string `json:"new_password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type pinRequest struct {
	Pin string `json:"pin" binding:"required"`
}

type changePinRequest struct {
	CurrentPin string `json:"current_pin" binding:"required"`
	NewPin     string `json:"new_pin" binding:"required"`
}

type removePinRequest struct {
	CurrentPin string `json:"current_pin" binding:"required"`
}

type resetPinRequest struct {
	Token  string `json:"token" binding:"required"`
	NewPin string `json:"new_pin" binding:"required"`
}

type resetPinWithCodeRequest struct {
	Email            string `json:"email" binding:"required,email"`
	VerificationCode string `json:"verification_code" binding:"required"`
	NewPin           string `json:"new_pin" binding:"required"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	HasPin   bool   `json:"has_pin"`
}

func newAccountResponse(u *models.User) accountResponse {
	return accountResponse{ID: u.ID, Username: u.Username, HasPin: u.HasPin()}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type pinVerifyResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Service string `json:"service"`
}
