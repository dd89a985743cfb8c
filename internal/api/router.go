package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ensplatform/auth-service/internal/api/handler"
	"github.com/ensplatform/auth-service/internal/api/middleware"
	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/service"
	"github.com/ensplatform/auth-service/internal/infrastructure/config"
	mongodb "github.com/ensplatform/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/ensplatform/auth-service/internal/infrastructure/db/redis"
	"github.com/ensplatform/auth-service/internal/infrastructure/notifier"
)

// Services bundles the wired application services so the entry point can
// reuse them outside the HTTP surface (super admin bootstrap).
type Services struct {
	Auth     *service.AuthService
	Accounts *service.AccountService
	Admin    *service.AdminService
}

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the wired services.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, *Services) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	repo := mongodb.NewAccountRepository(db)
	challenges := redisdb.NewChallengeStore(rdb)
	sink := redisdb.NewEventSink(rdb)
	deliver := notifier.NewLogNotifier(log)
	hasher := service.BcryptHasher{}

	authenticator := service.NewAuthenticator(repo, hasher, log)
	issuer := service.NewTokenIssuer(repo, cfg.JWTSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(), log)

	loginOtp := service.NewChallengeFlow(challenges, deliver, service.PurposeLoginOtp, service.SubjectLoginOtp,
		time.Duration(cfg.Otp.LoginTTLMin)*time.Minute, log)
	resetFlow := service.NewChallengeFlow(challenges, deliver, service.PurposePasswordReset, service.SubjectPasswordReset,
		time.Duration(cfg.Otp.ResetTTLMin)*time.Minute, log)
	emailChangeFlow := service.NewChallengeFlow(challenges, deliver, service.PurposeEmailChange, service.SubjectEmailChange,
		time.Duration(cfg.Otp.EmailChangeTTLMin)*time.Minute, log)

	authService := service.NewAuthService(authenticator, issuer, loginOtp, repo, log)
	accountService := service.NewAccountService(repo, hasher, authenticator, resetFlow, emailChangeFlow,
		time.Duration(cfg.TempPassword.TTLHours)*time.Hour, log)
	adminService := service.NewAdminService(repo, accountService, sink, log)

	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	adminHandler := handler.NewAdminHandler(adminService)

	authMiddleware := middleware.Auth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/login/otp", authHandler.RequestLoginOtp)
	e.POST("/auth/login/otp/verify", authHandler.CompleteLoginOtp)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)

	// --- Account routes ---
	e.POST("/accounts/register", accountHandler.Register)
	e.POST("/accounts/password/reset", accountHandler.RequestPasswordReset)
	e.POST("/accounts/password/reset/confirm", accountHandler.ConfirmPasswordReset)

	me := e.Group("/accounts/me", authMiddleware)
	me.GET("", accountHandler.GetProfile)
	me.PATCH("", accountHandler.UpdateProfile)
	me.PUT("/password", accountHandler.ChangePassword)
	me.POST("/email", accountHandler.RequestEmailChange)
	me.POST("/email/confirm", accountHandler.ConfirmEmailChange)

	// --- Admin routes ---
	admin := e.Group("/admin", authMiddleware, middleware.RequireRole(string(domain.RoleAdmin)))
	admin.POST("/users", adminHandler.CreateUser)
	admin.POST("/admins", adminHandler.CreateAdmin)
	admin.GET("/accounts", adminHandler.Search)
	admin.GET("/accounts/:id", adminHandler.GetAccount)
	admin.PATCH("/accounts/:id", adminHandler.UpdateAccount)
	admin.POST("/accounts/:id/block", adminHandler.Block)
	admin.POST("/accounts/:id/unblock", adminHandler.Unblock)
	admin.DELETE("/accounts/:id", adminHandler.SoftDelete)
	admin.DELETE("/accounts/:id/purge", adminHandler.HardDelete)

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e, &Services{
		Auth:     authService,
		Accounts: accountService,
		Admin:    adminService,
	}
}
