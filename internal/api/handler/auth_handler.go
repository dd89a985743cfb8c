package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ensplatform/auth-service/internal/api/metrics"
	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginOtpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login authenticates with email and password and returns a token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.TokenPair
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, pair)
}

// RequestLoginOtp verifies the first factor and sends a one-time login code.
//
// @Summary      Request a login one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/login/otp [post]
func (h *AuthHandler) RequestLoginOtp(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.RequestLoginOtp(c.Request().Context(), req.Email, req.Password); err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.ChallengesIssuedTotal.WithLabelValues("login").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "verification code sent"})
}

// CompleteLoginOtp exchanges a valid login code for a token pair.
//
// @Summary      Complete a one-time-code login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginOtpRequest  true  "Email and one-time code"
// @Success      200   {object}  ports.TokenPair
// @Failure      400   {object}  map[string]string
// @Router       /auth/login/otp/verify [post]
func (h *AuthHandler) CompleteLoginOtp(c echo.Context) error {
	var req loginOtpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.CompleteLoginOtp(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		metrics.ChallengesVerifiedTotal.WithLabelValues("login", "failure").Inc()
		return err
	}

	metrics.ChallengesVerifiedTotal.WithLabelValues("login", "success").Inc()
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new token pair.
//
// @Summary      Refresh a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  ports.TokenPair
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.RefreshSession(c.Request().Context(), req.RefreshToken)
	if err != nil {
		metrics.SessionRefreshesTotal.WithLabelValues(refreshResult(err)).Inc()
		return err
	}

	metrics.SessionRefreshesTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the caller's refresh token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

func loginResult(err error) string {
	var blocked *domain.BlockedError
	switch {
	case errors.As(err, &blocked):
		return "blocked"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}

func refreshResult(err error) string {
	var blocked *domain.BlockedError
	switch {
	case errors.As(err, &blocked):
		return "blocked"
	case errors.Is(err, domain.ErrSessionExpired):
		return "expired"
	default:
		return "error"
	}
}
