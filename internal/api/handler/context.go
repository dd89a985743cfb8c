package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ensplatform/auth-service/internal/core/domain"
)

// ctxIdentity extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: email and account ID
// must both be present, otherwise the JWT is structurally valid but
// operationally unusable.
func ctxIdentity(c echo.Context) (email, accountID string, err error) {
	email, _ = c.Get("email").(string)
	accountID, _ = c.Get("account_id").(string)
	if email == "" || accountID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return email, accountID, nil
}

// ctxAdminActor builds the acting-admin identity for guarded operations.
// The is_super_admin claim is only present on admin tokens.
func ctxAdminActor(c echo.Context) (domain.AdminActor, error) {
	_, accountID, err := ctxIdentity(c)
	if err != nil {
		return domain.AdminActor{}, err
	}
	superAdmin, _ := c.Get("is_super_admin").(bool)
	return domain.AdminActor{AccountID: accountID, SuperAdmin: superAdmin}, nil
}
