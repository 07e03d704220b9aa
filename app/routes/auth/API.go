package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmedkatalov/fowWorkProject/app/database"
	"github.com/ahmedkatalov/fowWorkProject/app/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Authenticate checks the credentials and returns the session with the stored
// role, "user" when none is assigned.
func (h *Handler) Authenticate(ctx context.Context, req LoginRequest) (*models.Session, error) {
	user, err := h.Store.GetUserByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if !CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, database.ErrNotFound
	}

	role, err := h.Store.GetRole(ctx, user.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		role = models.RoleUser
	case err != nil:
		return nil, err
	}
	return &models.Session{UID: user.ID, Email: user.Email, Role: role}, nil
}

func (h *Handler) LoginAPI(c *fiber.Ctx) error {
	wantsJSON := strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
	fail := func(code int, msg string) error {
		if wantsJSON {
			return c.Status(code).JSON(fiber.Map{"error": msg})
		}
		return c.Status(code).Render("auth/login", fiber.Map{"Title": "Вход", "Error": msg}, "")
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(fiber.StatusBadRequest, "Invalid request")
	}

	session, err := h.Authenticate(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fail(fiber.StatusUnauthorized, "Неверный email или пароль")
		}
		h.Logger.Error("login failed", zap.String("email", req.Email), zap.Error(err))
		return fail(fiber.StatusInternalServerError, "Database error")
	}

	token, err := h.Tokens.GenerateJWT(*session)
	if err != nil {
		return fail(fiber.StatusInternalServerError, "Failed to generate token")
	}

	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	if !wantsJSON {
		return c.Redirect("/today")
	}
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"session": session,
	})
}

func LogoutAPI(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return c.Redirect("/auth/login")
}
