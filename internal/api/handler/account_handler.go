package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ensplatform/auth-service/internal/api/metrics"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

type AccountHandler struct {
	accountService ports.AccountService
}

func NewAccountHandler(accountService ports.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,password"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
}

type updateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,password"`
}

type emailChangeRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

type emailChangeConfirmRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6"`
}

// Register creates a self-service account with a permanent password.
//
// @Summary      Register a new account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  domain.Account
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /accounts/register [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accountService.Register(c.Request().Context(), ports.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, account)
}

// GetProfile returns the caller's own profile.
//
// @Summary      Get own profile
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Account
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /accounts/me [get]
func (h *AccountHandler) GetProfile(c echo.Context) error {
	_, accountID, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	account, err := h.accountService.GetProfile(c.Request().Context(), accountID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}

// UpdateProfile updates mutable fields of the caller's own profile.
//
// @Summary      Update own profile
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  domain.Account
// @Failure      401   {object}  map[string]string
// @Router       /accounts/me [patch]
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	_, accountID, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	account, err := h.accountService.UpdateProfile(c.Request().Context(), accountID, ports.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}

// ChangePassword sets a new permanent password for the caller. Works with
// either the current permanent password or an unexpired temporary one.
//
// @Summary      Change own password
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /accounts/me/password [put]
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accountService.ChangePassword(c.Request().Context(), email, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password changed"})
}

// RequestPasswordReset sends a reset code to the given email. Always answers
// 200 so callers cannot probe which addresses are registered.
//
// @Summary      Request a password reset code
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /accounts/password/reset [post]
func (h *AccountHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accountService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}

	metrics.ChallengesIssuedTotal.WithLabelValues("password_reset").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "if the account exists, a reset code was sent"})
}

// ConfirmPasswordReset exchanges a valid reset code for a new password.
//
// @Summary      Confirm a password reset
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetConfirmRequest  true  "Email, code and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /accounts/password/reset/confirm [post]
func (h *AccountHandler) ConfirmPasswordReset(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accountService.ConfirmPasswordReset(c.Request().Context(), req.Email, req.Code, req.NewPassword); err != nil {
		metrics.ChallengesVerifiedTotal.WithLabelValues("password_reset", "failure").Inc()
		return err
	}

	metrics.ChallengesVerifiedTotal.WithLabelValues("password_reset", "success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "password reset"})
}

// RequestEmailChange sends a confirmation code to the requested new address.
//
// @Summary      Request an email change
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      emailChangeRequest  true  "New email address"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /accounts/me/email [post]
func (h *AccountHandler) RequestEmailChange(c echo.Context) error {
	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req emailChangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accountService.RequestEmailChange(c.Request().Context(), email, req.NewEmail); err != nil {
		return err
	}

	metrics.ChallengesIssuedTotal.WithLabelValues("email_change").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "confirmation code sent"})
}

// ConfirmEmailChange applies a pending email change after code verification.
// The caller's refresh token is revoked because the access token subject no
// longer matches the account email.
//
// @Summary      Confirm an email change
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      emailChangeConfirmRequest  true  "New email and code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /accounts/me/email/confirm [post]
func (h *AccountHandler) ConfirmEmailChange(c echo.Context) error {
	email, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req emailChangeConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.accountService.ConfirmEmailChange(c.Request().Context(), email, req.NewEmail, req.Code); err != nil {
		metrics.ChallengesVerifiedTotal.WithLabelValues("email_change", "failure").Inc()
		return err
	}

	metrics.ChallengesVerifiedTotal.WithLabelValues("email_change", "success").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "email changed, please log in again"})
}
