package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vtnhan03/final-be/internal/server/models"
)

const tokenTypeBearer = "bearer"

func (s *HTTPServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, s.health)
}

// --- /auth ---

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if !s.bind(c, &req) {
		return
	}

	user, err := s.accounts.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "account registered", "user_id", user.ID)
	c.JSON(http.StatusOK, newAccountResponse(user))
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if !s.bind(c, &req) {
		return
	}

	user, err := s.accounts.Authenticate(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.issueSession(c, user)
}

func (s *HTTPServer) googleLogin(c *gin.Context) {
	var req googleAuthRequest
	if !s.bind(c, &req) {
		return
	}

	profile, err := s.google.Verify(c.Request.Context(), req.Token)
	if err != nil {
		s.writeError(c, err)
		return
	}

	user, err := s.accounts.RegisterOrFetchGoogleAccount(c.Request.Context(), profile)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.issueSession(c, user)
}

func (s *HTTPServer) verifyPassword(c *gin.Context) {
	var req passwordRequest
	if !s.bind(c, &req) {
		return
	}

	if err := s.accounts.VerifyPassword(currentUser(c), req.Password); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Password verified successfully"})
}

func (s *HTTPServer) forgotPassword(c *gin.Context) {
	s.requestReset(c, models.TokenTypePassword)
}

func (s *HTTPServer) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !s.bind(c, &req) {
		return
	}
	err := s.resets.ConfirmResetByToken(c.Request.Context(), req.Token, req.NewPassword, models.TokenTypePassword)
	s.resetDone(c, err, "Password has been reset successfully")
}

func (s *HTTPServer) resetPasswordWithCode(c *gin.Context) {
	var req resetPasswordWithCodeRequest
	if !s.bind(c, &req) {
		return
	}
	err := s.resets.ConfirmResetByCode(c.Request.Context(), req.Email, req.VerificationCode, req.NewPassword, models.TokenTypePassword)
	s.resetDone(c, err, "Password has been reset successfully")
}

// --- /users ---

func (s *HTTPServer) me(c *gin.Context) {
	c.JSON(http.StatusOK, newAccountResponse(currentUser(c)))
}

func (s *HTTPServer) deleteAccount(c *gin.Context) {
	user := currentUser(c)
	if err := s.accounts.DeleteAccount(c.Request.Context(), user); err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info(c.Request.Context(), "account deleted", "user_id", user.ID)
	c.JSON(http.StatusOK, messageResponse{Message: "Account deleted successfully"})
}

func (s *HTTPServer) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.accounts.ChangePassword(c.Request.Context(), currentUser(c), req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Password changed successfully"})
}

func (s *HTTPServer) setPin(c *gin.Context) {
	var req pinRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.accounts.SetPin(c.Request.Context(), currentUser(c), req.Pin); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "PIN set successfully"})
}

func (s *HTTPServer) verifyPin(c *gin.Context) {
	var req pinRequest
	if !s.bind(c, &req) {
		return
	}

	user := currentUser(c)
	if !user.HasPin() {
		c.JSON(http.StatusOK, pinVerifyResponse{Valid: false, Message: "No PIN set for this user"})
		return
	}

	if s.accounts.VerifyPin(user, req.Pin) {
		c.JSON(http.StatusOK, pinVerifyResponse{Valid: true, Message: "PIN is valid"})
		return
	}
	c.JSON(http.StatusOK, pinVerifyResponse{Valid: false, Message: "PIN is invalid"})
}

func (s *HTTPServer) changePin(c *gin.Context) {
	var req changePinRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.accounts.ChangePin(c.Request.Context(), currentUser(c), req.CurrentPin, req.NewPin); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "PIN changed successfully"})
}

func (s *HTTPServer) removePin(c *gin.Context) {
	var req removePinRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.accounts.RemovePin(c.Request.Context(), currentUser(c), req.CurrentPin); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "PIN removed successfully"})
}

func (s *HTTPServer) forceRemovePin(c *gin.Context) {
	var req passwordRequest
	if !s.bind(c, &req) {
		return
	}
	if err := s.accounts.ForceRemovePin(c.Request.Context(), currentUser(c), req.Password); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "PIN removed successfully"})
}

func (s *HTTPServer) forgotPin(c *gin.Context) {
	s.requestReset(c, models.TokenTypePin)
}

func (s *HTTPServer) resetPin(c *gin.Context) {
	var req resetPinRequest
	if !s.bind(c, &req) {
		return
	}
	err := s.resets.ConfirmResetByToken(c.Request.Context(), req.Token, req.NewPin, models.TokenTypePin)
	s.resetDone(c, err, "PIN has been reset successfully")
}

func (s *HTTPServer) resetPinWithCode(c *gin.Context) {
	var req resetPinWithCodeRequest
	if !s.bind(c, &req) {
		return
	}
	err := s.resets.ConfirmResetByCode(c.Request.Context(), req.Email, req.VerificationCode, req.NewPin, models.TokenTypePin)
	s.resetDone(c, err, "PIN has been reset successfully")
}

// --- helpers below ---

func (s *HTTPServer) issueSession(c *gin.Context, user *models.User) {
	token, err := s.accounts.IssueSession(user)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: tokenTypeBearer})
}

func (s *HTTPServer) requestReset(c *gin.Context, tokenType models.TokenType) {
	var req emailRequest
	if !s.bind(c, &req) {
		return
	}
	msg, err := s.resets.RequestReset(c.Request.Context(), req.Email, tokenType)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}

func (s *HTTPServer) resetDone(c *gin.Context, err error, msg string) {
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msg})
}
