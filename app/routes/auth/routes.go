package auth

import (
	"strings"

	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sessionKey = "session"

// Handler serves login and guards the other route groups.
type Handler struct {
	Store  database.Store
	Tokens *Tokens
	Logger *zap.Logger
}

func NewHandler(store database.Store, tokens *Tokens, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: store, Tokens: tokens, Logger: logger}
}

func SetupAuthRoutes(app *fiber.App, h *Handler) {
	auth := app.Group("/auth")

	auth.Get("/login", h.ShowLoginPage)
	auth.Post("/login", h.LoginAPI)
	auth.Post("/logout", LogoutAPI)
	auth.Get("/logout", LogoutAPI)
}

func (h *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if tokenString := c.Cookies(CookieName); tokenString != "" {
		if _, err := h.Tokens.ValidateJWT(tokenString); err == nil {
			return c.Redirect("/today")
		}
	}

	return c.Render("auth/login", fiber.Map{
		"Title": "Вход",
	}, "")
}

func isAPIRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// Session returns the identity attached by AuthMiddleware.
func Session(c *fiber.Ctx) *models.Session {
	s, _ := c.Locals(sessionKey).(*models.Session)
	return s
}

// AuthMiddleware validates the JWT and attaches the request's Session.
func (h *Handler) AuthMiddleware(c *fiber.Ctx) error {
	tokenString := c.Cookies(CookieName)
	if tokenString == "" {
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	if tokenString == "" {
		if isAPIRequest(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "No token found"})
		}
		return c.Redirect("/auth/login")
	}

	session, err := h.Tokens.ValidateJWT(tokenString)
	if err != nil {
		if isAPIRequest(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		return c.Redirect("/auth/login")
	}

	c.Locals(sessionKey, session)
	c.Locals("user_email", session.Email)
	c.Locals("is_admin", session.IsAdmin())
	return c.Next()
}

// RoleMiddleware lets through sessions holding one of roles. Pages send
// everyone else to /today.
func RoleMiddleware(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s := Session(c); s != nil {
			for _, allowed := range roles {
				if s.Role == allowed {
					return c.Next()
				}
			}
		}

		if isAPIRequest(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
		}
		return c.Redirect("/today")
	}
}
