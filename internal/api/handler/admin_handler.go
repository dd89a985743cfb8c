package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ensplatform/auth-service/internal/api/metrics"
	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

type AdminHandler struct {
	adminService ports.AdminService
}

func NewAdminHandler(adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

type createUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
}

type createAdminRequest struct {
	Email      string `json:"email" validate:"required,email"`
	SuperAdmin bool   `json:"super_admin"`
}

type createdAccountResponse struct {
	Account              *domain.Account `json:"account"`
	TempPassword         string          `json:"temp_password"`
	TempPasswordTTLHours int             `json:"temp_password_ttl_hours"`
}

type blockRequest struct {
	Until time.Time `json:"until" validate:"required"`
}

// CreateUser provisions a user account with a one-time temporary password.
// The temporary password appears in this response and nowhere else.
//
// @Summary      Create a user account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user details"
// @Success      201   {object}  createdAccountResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.adminService.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("create_user").Inc()
	return c.JSON(http.StatusCreated, createdAccountResponse{
		Account:              created.Account,
		TempPassword:         created.TempPassword,
		TempPasswordTTLHours: created.TempPasswordTTLHours,
	})
}

// CreateAdmin provisions an administrator account. Only super admins may
// create another super admin.
//
// @Summary      Create an admin account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAdminRequest  true  "New admin details"
// @Success      201   {object}  createdAccountResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/admins [post]
func (h *AdminHandler) CreateAdmin(c echo.Context) error {
	actor, err := ctxAdminActor(c)
	if err != nil {
		return err
	}

	var req createAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.adminService.CreateAdmin(c.Request().Context(), actor, req.Email, req.SuperAdmin)
	if err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("create_admin").Inc()
	return c.JSON(http.StatusCreated, createdAccountResponse{
		Account:              created.Account,
		TempPassword:         created.TempPassword,
		TempPasswordTTLHours: created.TempPasswordTTLHours,
	})
}

// Search lists accounts by free-text and lifecycle filters, paginated.
//
// @Summary      Search accounts
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        q                query  string  false  "Free-text match on email and name"
// @Param        admins           query  bool    false  "Only admin accounts"
// @Param        users            query  bool    false  "Only user accounts"
// @Param        blocked          query  bool    false  "Only currently blocked accounts"
// @Param        include_deleted  query  bool    false  "Include soft-deleted accounts"
// @Param        page             query  int     false  "Page number, starting at 1"
// @Param        size             query  int     false  "Page size, default 20"
// @Success      200  {object}  ports.SearchResult
// @Failure      401  {object}  map[string]string
// @Router       /admin/accounts [get]
func (h *AdminHandler) Search(c echo.Context) error {
	filter := ports.SearchFilter{
		Text:           c.QueryParam("q"),
		Admins:         queryBool(c, "admins"),
		Users:          queryBool(c, "users"),
		Blocked:        queryBool(c, "blocked"),
		IncludeDeleted: queryBool(c, "include_deleted"),
		Page:           queryInt(c, "page", 1),
		Size:           queryInt(c, "size", 20),
	}

	result, err := h.adminService.Search(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// GetAccount returns one account by its public ID, including soft-deleted ones.
//
// @Summary      Get an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  domain.Account
// @Failure      404  {object}  map[string]string
// @Router       /admin/accounts/{id} [get]
func (h *AdminHandler) GetAccount(c echo.Context) error {
	account, err := h.adminService.GetAccount(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, account)
}

// UpdateAccount updates another account's profile fields.
//
// @Summary      Update an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Account ID"
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  domain.Account
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/accounts/{id} [patch]
func (h *AdminHandler) UpdateAccount(c echo.Context) error {
	actor, err := ctxAdminActor(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	account, err := h.adminService.UpdateAccount(c.Request().Context(), actor, c.Param("id"), ports.UpdateProfileInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, account)
}

// Block suspends an account until the given instant and revokes its session.
//
// @Summary      Block an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Account ID"
// @Param        body  body      blockRequest  true  "Block expiry"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/accounts/{id}/block [post]
func (h *AdminHandler) Block(c echo.Context) error {
	actor, err := ctxAdminActor(c)
	if err != nil {
		return err
	}

	var req blockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.adminService.Block(c.Request().Context(), actor, c.Param("id"), req.Until); err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("block").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "account blocked"})
}

// Unblock lifts an account's block immediately.
//
// @Summary      Unblock an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/accounts/{id}/unblock [post]
func (h *AdminHandler) Unblock(c echo.Context) error {
	actor, err := ctxAdminActor(c)
	if err != nil {
		return err
	}

	if err := h.adminService.Unblock(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("unblock").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "account unblocked"})
}

// SoftDelete retires an account. It disappears from login and default
// lookups but its data is retained.
//
// @Summary      Soft-delete an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/accounts/{id} [delete]
func (h *AdminHandler) SoftDelete(c echo.Context) error {
	actor, err := ctxAdminActor(c)
	if err != nil {
		return err
	}

	if err := h.adminService.SoftDelete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("soft_delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "account deleted"})
}

// HardDelete permanently removes an account and publishes a deletion event
// for downstream cleanup.
//
// @Summary      Permanently delete an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/accounts/{id}/purge [delete]
func (h *AdminHandler) HardDelete(c echo.Context) error {
	actor, err := ctxAdminActor(c)
	if err != nil {
		return err
	}

	if err := h.adminService.HardDelete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}

	metrics.AccountMutationsTotal.WithLabelValues("hard_delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "account permanently deleted"})
}

func queryBool(c echo.Context, name string) bool {
	v, _ := strconv.ParseBool(c.QueryParam(name))
	return v
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
