package routes

import (
	"net/http"
	"time"

	"dacsanviet/api/handler"
	"dacsanviet/api/middleware"
	"dacsanviet/internal/entity"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Profile        *handler.ProfileHandler
	Users          *handler.UserHandler
	Sessions       *handler.SessionHandler
	Products       *handler.ProductHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	OTPRate        *middleware.RateLimiter
}

func NewRouter(
	e *echo.Echo,
	auth *handler.AuthHandler,
	profile *handler.ProfileHandler,
	users *handler.UserHandler,
	sessions *handler.SessionHandler,
	products *handler.ProductHandler,
	authMiddleware middleware.AuthMiddleware,
) *Router {
	return &Router{
		Echo:           e,
		Auth:           auth,
		Profile:        profile,
		Users:          users,
		Sessions:       sessions,
		Products:       products,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		OTPRate:        middleware.NewRateLimiter(rate.Limit(1), 3, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", r.Auth.Register, r.AuthRate.Middleware())
	auth.POST("/register/send-otp", r.Auth.SendRegistrationOTP, r.OTPRate.Middleware())
	auth.POST("/register/verify-otp", r.Auth.VerifyRegistrationOTP, r.AuthRate.Middleware())
	auth.POST("/login", r.Auth.Login, r.AuthRate.Middleware())
	auth.POST("/logout", r.Auth.Logout, r.AuthMiddleware.RequireAuth)
	auth.POST("/logout-all", r.Auth.LogoutAll, r.AuthMiddleware.RequireAuth)
	auth.GET("/session", r.Auth.CheckSession, r.AuthMiddleware.RequireAuth)
	auth.POST("/password-reset/send-otp", r.Auth.SendPasswordResetOTP, r.OTPRate.Middleware())
	auth.POST("/password-reset/verify-otp", r.Auth.ResetPassword, r.AuthRate.Middleware())

	profile := api.Group("/profile", r.AuthMiddleware.RequireAuth)
	profile.GET("", r.Profile.Get)
	profile.PUT("", r.Profile.Update)
	profile.PUT("/avatar", r.Profile.SetAvatar)
	profile.PUT("/password", r.Profile.ChangePassword)
	profile.POST("/password/send-otp", r.Profile.SendPasswordChangeOTP, r.OTPRate.Middleware())
	profile.POST("/password/verify-otp", r.Profile.VerifyPasswordChangeOTP)
	profile.POST("/email/send-otp", r.Profile.SendEmailUpdateOTP, r.OTPRate.Middleware())
	profile.POST("/email/verify-otp", r.Profile.VerifyEmailUpdate)
	profile.POST("/phone/send-otp", r.Profile.SendPhoneUpdateOTP, r.OTPRate.Middleware())
	profile.POST("/phone/verify-otp", r.Profile.VerifyPhoneUpdate)

	admin := []echo.MiddlewareFunc{middleware.RequireRole(string(entity.UserRoleAdmin))}

	users := api.Group("/users", r.AuthMiddleware.RequireAuth)
	users.GET("", r.Users.List, admin...)
	users.GET("/search", r.Users.Search, admin...)
	users.GET("/stats", r.Users.Stats, admin...)
	users.GET("/role/:role", r.Users.ByRole, admin...)
	users.GET("/:id", r.Users.Get, admin...)
	users.GET("/:id/sessions", r.Users.Sessions, admin...)
	users.PUT("/:id", r.Users.Update, admin...)
	users.PATCH("/:id/status", r.Users.ToggleStatus, admin...)
	users.DELETE("/:id", r.Users.Delete, admin...)

	sessions := api.Group("/sessions", r.AuthMiddleware.RequireAuth)
	sessions.GET("", r.Sessions.List, admin...)
	sessions.GET("/stats", r.Sessions.Stats, admin...)
	sessions.GET("/ip/:ip", r.Sessions.ByIP, admin...)
	sessions.DELETE("/cleanup", r.Sessions.Cleanup, admin...)
	sessions.DELETE("/:sessionId", r.Sessions.Revoke, admin...)

	products := api.Group("/products")
	products.GET("", r.Products.List)
	products.GET("/categories", r.Products.Categories)
	products.GET("/:id", r.Products.Get)
}
