package handler

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"

	"filesmanager/internal/http/middleware"
	"filesmanager/internal/service"
)

// CreateUser registers a user from a JSON body {email, password}.
func CreateUser(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid body")
		}

		user, err := auth.Register(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// Me returns the authenticated user.
func Me(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := auth.Me(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(user)
	}
}

// Connect exchanges Basic credentials for a session token.
func Connect(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email, password, ok := basicCredentials(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return writeServiceError(c, service.ErrUnauthorized)
		}

		token, err := auth.Connect(c.UserContext(), email, password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"token": token})
	}
}

// Disconnect revokes the session in X-Token.
func Disconnect(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.Disconnect(c.UserContext(), c.Get(middleware.TokenHeader)); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func basicCredentials(header string) (email, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}
