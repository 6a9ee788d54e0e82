// Package rest exposes the account service over HTTP/JSON under /api/v1.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vtnhan03/final-be/internal/logging"
	"github.com/vtnhan03/final-be/internal/server/config"
	"github.com/vtnhan03/final-be/internal/server/google"
	"github.com/vtnhan03/final-be/internal/server/models"
)

// AccountService is the account behaviour the handlers rely on.
type AccountService interface {
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	RegisterOrFetchGoogleAccount(ctx context.Context, profile *google.Profile) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	VerifyPassword(user *models.User, password string) error
	ChangePassword(ctx context.Context, user *models.User, current, next string) error
	SetPin(ctx context.Context, user *models.User, pin string) error
	ChangePin(ctx context.Context, user *models.User, current, next string) error
	RemovePin(ctx context.Context, user *models.User, current string) error
	ForceRemovePin(ctx context.Context, user *models.User, password string) error
	VerifyPin(user *models.User, pin string) bool
	DeleteAccount(ctx context.Context, user *models.User) error
	IssueSession(user *models.User) (string, error)
	ResolveSession(ctx context.Context, token string) (*models.User, error)
}

// ResetService is the reset flow the handlers rely on.
type ResetService interface {
	RequestReset(ctx context.Context, email string, tokenType models.TokenType) (string, error)
	ConfirmResetByToken(ctx context.Context, secret, newSecret string, tokenType models.TokenType) error
	ConfirmResetByCode(ctx context.Context, email, code, newSecret string, tokenType models.TokenType) error
}

// IdentityVerifier resolves a Google access token to a profile.
type IdentityVerifier interface {
	Verify(ctx context.Context, accessToken string) (*google.Profile, error)
}

// HTTPServer serves the REST API.
type HTTPServer struct {
	address  string
	logger   logging.Logger
	accounts AccountService
	resets   ResetService
	google   IdentityVerifier
	engine   *gin.Engine
	health   healthResponse
}

// NewHTTPServer builds the router for cfg.
func NewHTTPServer(cfg *config.Config, l logging.Logger, as AccountService, rs ResetService, gv IdentityVerifier) *HTTPServer {
	if cfg.Environment != logging.EnvDevelopment && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	useJSONFieldNames()

	s := &HTTPServer{
		address:  cfg.EndpointAddrHTTP,
		logger:   l.With("module", "http_server"),
		accounts: as,
		resets:   rs,
		google:   gv,
		health:   healthResponse{Status: "healthy", Version: cfg.AppVersion, Service: cfg.AppName},
	}

	e := gin.New()
	e.Use(requestID(), accessLog(s.logger), recovery(s.logger), corsPolicy(cfg.AllowedOrigins))
	s.routes(e.Group("/api/v1"))
	s.engine = e
	return s
}

func (s *HTTPServer) routes(api *gin.RouterGroup) {
	api.GET("/health", s.healthCheck)

	a := api.Group("/auth")
	a.POST("/register", s.register)
	a.POST("/login", s.login)
	a.POST("/google", s.googleLogin)
	a.POST("/forgot-password", s.forgotPassword)
	a.POST("/reset-password", s.resetPassword)
	a.POST("/reset-password-with-code", s.resetPasswordWithCode)
	a.POST("/verify-password", s.authenticate(), s.verifyPassword)

	u := api.Group("/users")
	u.POST("/pin/forgot", s.forgotPin)
	u.POST("/pin/reset", s.resetPin)
	u.POST("/pin/reset-with-code", s.resetPinWithCode)

	me := u.Group("", s.authenticate())
	me.GET("/me", s.me)
	me.DELETE("/me", s.deleteAccount)
	me.POST("/change-password", s.changePassword)
	me.POST("/pin", s.setPin)
	me.PUT("/pin", s.changePin)
	me.DELETE("/pin", s.removePin)
	me.POST("/pin/verify", s.verifyPin)
	me.DELETE("/pin/force-remove", s.forceRemovePin)
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler { return s.engine }

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
